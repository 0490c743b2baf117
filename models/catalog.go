package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Meal belongs to exactly one provider and one category. Name is unique per provider.
type Meal struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	ProviderID  uint                        `json:"provider_id" gorm:"not null;uniqueIndex:idx_meal_provider_name"`
	Provider    *Provider                   `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	CategoryID  uint                        `json:"category_id" gorm:"not null;index"`
	Category    *Category                   `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Name        string                      `json:"name" gorm:"not null;uniqueIndex:idx_meal_provider_name"`
	Description string                      `json:"description"`
	Price       decimal.Decimal             `json:"price" gorm:"type:numeric(12,2);not null"`
	DietaryTags datatypes.JSONSlice[string] `json:"dietary_tags"`
	ImageURL    *string                     `json:"image_url,omitempty"`
	IsAvailable bool                        `json:"is_available" gorm:"not null"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}
