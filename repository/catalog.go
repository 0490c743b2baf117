package repository

import (
	"context"
	"strings"

	"foodhub-api/models"
)

// MealFilter narrows ListMeals. Zero values mean "no filter".
type MealFilter struct {
	CategoryID    uint
	ProviderID    uint
	Query         string
	AvailableOnly bool
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	return s.conn(ctx).Create(c).Error
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.conn(ctx).Order("name asc").Find(&categories).Error
	return categories, err
}

func (s *Store) FindCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := s.conn(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CategoryNameTaken is case-insensitive and ignores excludeID
func (s *Store) CategoryNameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	q := s.conn(ctx).Model(&models.Category{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (s *Store) RenameCategory(ctx context.Context, id uint, name string) error {
	return s.conn(ctx).Model(&models.Category{}).Where("id = ?", id).Update("name", name).Error
}

func (s *Store) CountMealsInCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Meal{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

// DeleteMealsInCategory removes the category's meals and every cart line that points at them
func (s *Store) DeleteMealsInCategory(ctx context.Context, categoryID uint) error {
	mealIDs := s.conn(ctx).Model(&models.Meal{}).Select("id").Where("category_id = ?", categoryID)
	if err := s.conn(ctx).Where("meal_id IN (?)", mealIDs).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return s.conn(ctx).Where("category_id = ?", categoryID).Delete(&models.Meal{}).Error
}

func (s *Store) DeleteCategory(ctx context.Context, id uint) (int64, error) {
	res := s.conn(ctx).Where("id = ?", id).Delete(&models.Category{})
	return res.RowsAffected, res.Error
}

func (s *Store) CreateMeal(ctx context.Context, m *models.Meal) error {
	return s.conn(ctx).Create(m).Error
}

func (s *Store) FindMealByID(ctx context.Context, id uint) (*models.Meal, error) {
	var m models.Meal
	if err := s.conn(ctx).Preload("Provider").Preload("Category").First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// MealNameTaken checks the per-provider name uniqueness, ignoring excludeID
func (s *Store) MealNameTaken(ctx context.Context, providerID uint, name string, excludeID uint) (bool, error) {
	var count int64
	q := s.conn(ctx).Model(&models.Meal{}).Where("provider_id = ? AND name = ?", providerID, name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (s *Store) ListMeals(ctx context.Context, f MealFilter) ([]models.Meal, error) {
	q := s.conn(ctx).Model(&models.Meal{}).Preload("Provider").Preload("Category")
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.ProviderID != 0 {
		q = q.Where("provider_id = ?", f.ProviderID)
	}
	if f.AvailableOnly {
		q = q.Where("is_available = ?", true)
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}

	var meals []models.Meal
	err := q.Order("created_at desc, id desc").Find(&meals).Error
	return meals, err
}

func (s *Store) UpdateMeal(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.conn(ctx).Model(&models.Meal{}).Where("id = ?", id).Updates(fields).Error
}

// DeleteMeal removes the meal and the cart lines that reference it.
// Order items keep their meal id and name snapshot.
func (s *Store) DeleteMeal(ctx context.Context, id uint) (int64, error) {
	if err := s.conn(ctx).Where("meal_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
		return 0, err
	}
	res := s.conn(ctx).Where("id = ?", id).Delete(&models.Meal{})
	return res.RowsAffected, res.Error
}
