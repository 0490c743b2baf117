package services

import (
	"context"
	"errors"
	"strings"

	"foodhub-api/apperror"
	"foodhub-api/config"
	"foodhub-api/models"
	"foodhub-api/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CatalogService struct {
	store          *repository.Store
	categoryPolicy string
}

func NewCatalogService(store *repository.Store, categoryPolicy string) *CatalogService {
	if categoryPolicy == "" {
		categoryPolicy = config.CategoryDeleteRestrict
	}
	return &CatalogService{store: store, categoryPolicy: categoryPolicy}
}

type CategoryIn struct {
	Name string `json:"name" binding:"required,max=80"`
}

type MealIn struct {
	Name        string          `json:"name" binding:"required,max=120"`
	Description string          `json:"description" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  uint            `json:"category_id" binding:"required"`
	DietaryTags []string        `json:"dietary_tags" binding:"omitempty,dive,required,max=40"`
	ImageURL    *string         `json:"image_url" binding:"omitempty,url"`
}

// MealPatch carries only the fields the provider wants to change
type MealPatch struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=120"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *uint            `json:"category_id" binding:"omitempty,min=1"`
	DietaryTags []string         `json:"dietary_tags" binding:"omitempty,dive,required,max=40"`
	ImageURL    *string          `json:"image_url" binding:"omitempty,url"`
	IsAvailable *bool            `json:"is_available"`
}

// ── Categories ─────────────────────────────────────────────────────

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	return categories, apperror.FromDB(err, "Category not found")
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryIn) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	taken, err := s.store.CategoryNameTaken(ctx, in.Name, 0)
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}
	if taken {
		return nil, apperror.Conflict("A category named \"" + in.Name + "\" already exists")
	}

	c := &models.Category{Name: in.Name}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, in CategoryIn) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	c, err := s.store.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, apperror.FromDB(err, "Category not found")
	}
	taken, err := s.store.CategoryNameTaken(ctx, in.Name, id)
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}
	if taken {
		return nil, apperror.Conflict("A category named \"" + in.Name + "\" already exists")
	}
	if err := s.store.RenameCategory(ctx, id, in.Name); err != nil {
		return nil, apperror.FromDB(err, "")
	}
	c.Name = in.Name
	return c, nil
}

// DeleteCategory applies the configured policy: restrict refuses while meals
// reference the category, cascade removes those meals first.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if _, err := tx.FindCategoryByID(ctx, id); err != nil {
			return err
		}
		meals, err := tx.CountMealsInCategory(ctx, id)
		if err != nil {
			return err
		}
		if meals > 0 {
			if s.categoryPolicy != config.CategoryDeleteCascade {
				return apperror.Conflict("Category still has meals; move or delete them first")
			}
			if err := tx.DeleteMealsInCategory(ctx, id); err != nil {
				return err
			}
		}
		_, err = tx.DeleteCategory(ctx, id)
		return err
	})
	return apperror.FromDB(err, "Category not found")
}

// ── Meals ──────────────────────────────────────────────────────────

func (s *CatalogService) CreateMeal(ctx context.Context, providerID uint, in MealIn) (*models.Meal, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := requirePositive("price", in.Price); err != nil {
		return nil, err
	}

	var mealID uint
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if _, err := tx.FindProviderByID(ctx, providerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.InvalidState("You must create a provider profile before adding meals")
			}
			return err
		}
		if _, err := tx.FindCategoryByID(ctx, in.CategoryID); err != nil {
			return apperror.FromDB(err, "Category not found")
		}
		taken, err := tx.MealNameTaken(ctx, providerID, in.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict("A meal named \"" + in.Name + "\" already exists in your menu")
		}

		meal := &models.Meal{
			ProviderID:  providerID,
			CategoryID:  in.CategoryID,
			Name:        in.Name,
			Description: in.Description,
			Price:       in.Price,
			DietaryTags: datatypes.JSONSlice[string](nonNilTags(in.DietaryTags)),
			ImageURL:    in.ImageURL,
			IsAvailable: true,
		}
		if err := tx.CreateMeal(ctx, meal); err != nil {
			return err
		}
		mealID = meal.ID
		return nil
	})
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return s.GetMeal(ctx, mealID)
}

func (s *CatalogService) ListMeals(ctx context.Context, f repository.MealFilter) ([]models.Meal, error) {
	meals, err := s.store.ListMeals(ctx, f)
	return meals, apperror.FromDB(err, "")
}

func (s *CatalogService) GetMeal(ctx context.Context, id uint) (*models.Meal, error) {
	meal, err := s.store.FindMealByID(ctx, id)
	if err != nil {
		return nil, apperror.FromDB(err, "Meal not found")
	}
	return meal, nil
}

func (s *CatalogService) UpdateMeal(ctx context.Context, mealID, providerID uint, patch MealPatch) (*models.Meal, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if err := validateInput(patch); err != nil {
		return nil, err
	}
	if patch.Price != nil {
		if err := requirePositive("price", *patch.Price); err != nil {
			return nil, err
		}
	}

	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		meal, err := tx.FindMealByID(ctx, mealID)
		if err != nil {
			return apperror.FromDB(err, "Meal not found")
		}
		if meal.ProviderID != providerID {
			return apperror.Forbidden("You can only update your own meals")
		}

		fields := map[string]interface{}{}
		if patch.Name != nil && *patch.Name != meal.Name {
			taken, err := tx.MealNameTaken(ctx, providerID, *patch.Name, mealID)
			if err != nil {
				return err
			}
			if taken {
				return apperror.Conflict("A meal named \"" + *patch.Name + "\" already exists in your menu")
			}
			fields["name"] = *patch.Name
		}
		if patch.CategoryID != nil {
			if _, err := tx.FindCategoryByID(ctx, *patch.CategoryID); err != nil {
				return apperror.FromDB(err, "Category not found")
			}
			fields["category_id"] = *patch.CategoryID
		}
		if patch.Description != nil {
			fields["description"] = *patch.Description
		}
		if patch.Price != nil {
			fields["price"] = *patch.Price
		}
		if patch.DietaryTags != nil {
			fields["dietary_tags"] = datatypes.JSONSlice[string](patch.DietaryTags)
		}
		if patch.ImageURL != nil {
			fields["image_url"] = *patch.ImageURL
		}
		if patch.IsAvailable != nil {
			fields["is_available"] = *patch.IsAvailable
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.UpdateMeal(ctx, mealID, fields)
	})
	if err != nil {
		return nil, apperror.FromDB(err, "Meal not found")
	}
	return s.GetMeal(ctx, mealID)
}

// DeleteMeal also drops the meal from every cart; placed orders keep their snapshot
func (s *CatalogService) DeleteMeal(ctx context.Context, mealID, providerID uint) error {
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		meal, err := tx.FindMealByID(ctx, mealID)
		if err != nil {
			return err
		}
		if meal.ProviderID != providerID {
			return apperror.Forbidden("You can only delete your own meals")
		}
		_, err = tx.DeleteMeal(ctx, mealID)
		return err
	})
	return apperror.FromDB(err, "Meal not found")
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
