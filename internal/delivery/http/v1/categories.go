package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/timeboxhq/timebox/internal/models"
	"github.com/timeboxhq/timebox/internal/services"
)

type getCategoryResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CategoryType string    `json:"category_type"`
	Description  string    `json:"description,omitempty"`
	Color        string    `json:"color"`
	Icon         string    `json:"icon"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newGetCategoryResponse(category *models.Category) getCategoryResponse {
	return getCategoryResponse{
		ID:           category.ID,
		Name:         category.Name,
		CategoryType: category.CategoryType,
		Description:  category.Description,
		Color:        category.Color,
		Icon:         category.Icon,
		IsActive:     category.IsActive,
		CreatedAt:    category.CreatedAt,
		UpdatedAt:    category.UpdatedAt,
	}
}

type categoryRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	CategoryType string `json:"category_type" binding:"required,oneof=work personal health learning"`
	Description  string `json:"description,omitempty"`
	Color        string `json:"color,omitempty"`
	Icon         string `json:"icon,omitempty"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

func (r *categoryRequest) toParams(userID string) services.CategoryParams {
	params := services.CategoryParams{
		UserID:       userID,
		Name:         r.Name,
		CategoryType: r.CategoryType,
		Description:  r.Description,
		Color:        r.Color,
		Icon:         r.Icon,
		IsActive:     true,
	}
	if r.IsActive != nil {
		params.IsActive = *r.IsActive
	}
	return params
}

func (h *handlerImpl) HandleCreateCategory(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	var req categoryRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	category, err := h.categories.CreateCategory(c, req.toParams(userID))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create category")
		switch {
		case errors.Is(err, services.ErrCategoryAlreadyExists):
			abort(c, newConflictError(services.ErrCategoryAlreadyExists.Error()))
		case errors.Is(err, services.ErrValidation):
			abort(c, newBadRequestError(err.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.logger.Info().Msg("created category")
	c.JSON(http.StatusCreated, newGetCategoryResponse(category))
}

func (h *handlerImpl) HandleGetCategories(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	categories, err := h.categories.ListCategories(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list categories")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	response := make([]getCategoryResponse, len(categories))
	for i, category := range categories {
		response[i] = newGetCategoryResponse(category)
	}

	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleUpdateCategory(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	categoryID := c.Param("id")
	if categoryID == "" {
		h.logger.Error().Msg("no category id provided")
		abort(c, newBadRequestError("category id required"))
		return
	}

	var req categoryRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	category, err := h.categories.UpdateCategory(c, categoryID, req.toParams(userID))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update category")
		switch {
		case errors.Is(err, services.ErrCategoryNotFound):
			abort(c, newNotFoundError(services.ErrCategoryNotFound.Error()))
		case errors.Is(err, services.ErrCategoryAlreadyExists):
			abort(c, newConflictError(services.ErrCategoryAlreadyExists.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.logger.Info().Msg("updated category")
	c.JSON(http.StatusOK, newGetCategoryResponse(category))
}

func (h *handlerImpl) HandleDeleteCategory(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	categoryID := c.Param("id")
	if categoryID == "" {
		h.logger.Error().Msg("no category id provided")
		abort(c, newBadRequestError("category id required"))
		return
	}

	err := h.categories.DeleteCategory(c, userID, categoryID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to delete category")
		switch {
		case errors.Is(err, services.ErrCategoryNotFound):
			abort(c, newNotFoundError(services.ErrCategoryNotFound.Error()))
		case errors.Is(err, services.ErrCategoryHasTasks):
			abort(c, newConflictError(services.ErrCategoryHasTasks.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.logger.Info().Msg("deleted category")
	c.Status(http.StatusNoContent)
}
