package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/timeboxhq/timebox/internal/models"
)

type categoryServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewCategoryService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) CategoryService {
	return &categoryServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *categoryServiceImpl) CreateCategory(ctx context.Context, params CategoryParams) (*models.Category, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	if params.CategoryType == "" {
		params.CategoryType = models.CategoryTypeOther
	}
	if !models.ValidCategoryType(params.CategoryType) {
		return nil, fmt.Errorf("%w: invalid category type %q", ErrValidation, params.CategoryType)
	}
	if params.Color == "" {
		params.Color = "#3498db"
	}
	if params.Icon == "" {
		params.Icon = "📋"
	}

	categoryUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate category uuid")
		return nil, err
	}

	now := time.Now()
	category := &models.Category{
		ID:           categoryUUID.String(),
		UserID:       params.UserID,
		Name:         params.Name,
		CategoryType: params.CategoryType,
		Description:  params.Description,
		Color:        params.Color,
		Icon:         params.Icon,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	const insertCategoryQuery = `
INSERT INTO categories (id,
                        user_id,
                        name,
                        category_type,
                        description,
                        color,
                        icon,
                        is_active,
                        created_at,
                        updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertCategoryQuery,
		category.ID,
		category.UserID,
		category.Name,
		category.CategoryType,
		category.Description,
		category.Color,
		category.Icon,
		category.IsActive,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			s.logger.Warn().
				Str("name", category.Name).
				Str("user_id", category.UserID).
				Msg("category already exists")
			return nil, ErrCategoryAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert category")
		return nil, err
	}

	s.logger.Info().
		Str("category_id", category.ID).
		Str("user_id", category.UserID).
		Msg("created category")
	return category, nil
}

func (s *categoryServiceImpl) ListCategories(ctx context.Context, userID string) ([]*models.Category, error) {
	const selectCategoriesQuery = `
SELECT id,
       user_id,
       name,
       category_type,
       description,
       color,
       icon,
       is_active,
       created_at,
       updated_at
FROM categories
WHERE user_id = $1
ORDER BY name
`
	rows, err := s.pgPool.Query(ctx, selectCategoriesQuery, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select categories")
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := new(models.Category)
		err = rows.Scan(
			&category.ID,
			&category.UserID,
			&category.Name,
			&category.CategoryType,
			&category.Description,
			&category.Color,
			&category.Icon,
			&category.IsActive,
			&category.CreatedAt,
			&category.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan category")
			return nil, err
		}
		categories = append(categories, category)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return categories, nil
}

func (s *categoryServiceImpl) UpdateCategory(ctx context.Context, categoryID string, params CategoryParams) (*models.Category, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	if !models.ValidCategoryType(params.CategoryType) {
		return nil, fmt.Errorf("%w: invalid category type %q", ErrValidation, params.CategoryType)
	}

	category := &models.Category{
		ID:           categoryID,
		UserID:       params.UserID,
		Name:         params.Name,
		CategoryType: params.CategoryType,
		Description:  params.Description,
		Color:        params.Color,
		Icon:         params.Icon,
		IsActive:     params.IsActive,
		UpdatedAt:    time.Now(),
	}

	const updateCategoryQuery = `
UPDATE categories
SET name          = $1,
    category_type = $2,
    description   = $3,
    color         = $4,
    icon          = $5,
    is_active     = $6,
    updated_at    = $7
WHERE id = $8 AND user_id = $9
RETURNING created_at
`
	err := s.pgPool.QueryRow(
		ctx,
		updateCategoryQuery,
		category.Name,
		category.CategoryType,
		category.Description,
		category.Color,
		category.Icon,
		category.IsActive,
		category.UpdatedAt,
		category.ID,
		category.UserID,
	).Scan(&category.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrCategoryAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Str("category_id", category.ID).
			Msg("failed to update category")
		return nil, err
	}

	s.logger.Info().
		Str("category_id", category.ID).
		Str("user_id", category.UserID).
		Msg("updated category")
	return category, nil
}

func (s *categoryServiceImpl) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	const deleteCategoryQuery = `
DELETE FROM categories
WHERE id = $1 AND user_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteCategoryQuery,
		categoryID,
		userID,
	)
	if err != nil {
		// The RESTRICT foreign key from tasks turns the delete into a
		// conflict instead of cascading.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			s.logger.Warn().
				Str("category_id", categoryID).
				Str("user_id", userID).
				Msg("category has dependent tasks")
			return ErrCategoryHasTasks
		}

		s.logger.Error().
			Err(err).
			Str("category_id", categoryID).
			Msg("failed to delete category")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	s.logger.Info().
		Str("category_id", categoryID).
		Str("user_id", userID).
		Msg("deleted category")
	return nil
}
