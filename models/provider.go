package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Provider is a restaurant profile. ID is the owning user's ID, so one user holds at most one profile.
type Provider struct {
	ID             uint            `json:"id" gorm:"primaryKey;autoIncrement:false"`
	RestaurantName string          `json:"restaurant_name" gorm:"uniqueIndex;not null"`
	Email          string          `json:"email" gorm:"uniqueIndex;not null"`
	Description    string          `json:"description"`
	CuisineType    string          `json:"cuisine_type"`
	Contact        string          `json:"contact"`
	Address        string          `json:"address" gorm:"not null"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee" gorm:"type:numeric(12,2);not null;default:0"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount" gorm:"type:numeric(12,2);not null;default:0"`
	OpeningHours   datatypes.JSON  `json:"opening_hours,omitempty"`
	LogoURL        *string         `json:"logo_url,omitempty"`
	BannerURL      *string         `json:"banner_url,omitempty"`
	IsApproved     bool            `json:"is_approved" gorm:"not null;default:false"`
	IsOpen         bool            `json:"is_open" gorm:"not null"`
	Rating         float64         `json:"rating" gorm:"default:0"`
	TotalReviews   int             `json:"total_reviews" gorm:"default:0"`
	Meals          []Meal          `json:"meals,omitempty" gorm:"foreignKey:ProviderID"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
