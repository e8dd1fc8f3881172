package models

import "time"

const (
	CategoryTypeWork          = "work"
	CategoryTypeHealth        = "health"
	CategoryTypeLearning      = "learning"
	CategoryTypePersonal      = "personal"
	CategoryTypeHobbies       = "hobbies"
	CategoryTypeFinance       = "finance"
	CategoryTypeRelationships = "relationships"
	CategoryTypeSpirituality  = "spirituality"
	CategoryTypeTravel        = "travel"
	CategoryTypeOther         = "other"
)

type Category struct {
	ID           string
	UserID       string
	Name         string
	CategoryType string
	Description  string
	Color        string
	Icon         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func ValidCategoryType(t string) bool {
	switch t {
	case CategoryTypeWork, CategoryTypeHealth, CategoryTypeLearning,
		CategoryTypePersonal, CategoryTypeHobbies, CategoryTypeFinance,
		CategoryTypeRelationships, CategoryTypeSpirituality,
		CategoryTypeTravel, CategoryTypeOther:
		return true
	}
	return false
}
