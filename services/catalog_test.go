package services

import (
	"context"
	"testing"

	"foodhub-api/apperror"
	"foodhub-api/config"
	"foodhub-api/models"
	"foodhub-api/repository"
	"foodhub-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pizza, err := f.catalog.CreateCategory(ctx, CategoryIn{Name: "  Pizza "})
	require.NoError(t, err)
	assert.Equal(t, "Pizza", pizza.Name)

	_, err = f.catalog.CreateCategory(ctx, CategoryIn{Name: "pizza"})
	assertKind(t, err, apperror.KindConflict)

	_, err = f.catalog.CreateCategory(ctx, CategoryIn{Name: ""})
	assertKind(t, err, apperror.KindInvalidArgument)

	_, err = f.catalog.CreateCategory(ctx, CategoryIn{Name: "Burgers"})
	require.NoError(t, err)

	_, err = f.catalog.UpdateCategory(ctx, pizza.ID, CategoryIn{Name: "Burgers"})
	assertKind(t, err, apperror.KindConflict)

	renamed, err := f.catalog.UpdateCategory(ctx, pizza.ID, CategoryIn{Name: "Pizzas"})
	require.NoError(t, err)
	assert.Equal(t, "Pizzas", renamed.Name)

	_, err = f.catalog.UpdateCategory(ctx, 999, CategoryIn{Name: "Nope"})
	assertKind(t, err, apperror.KindNotFound)

	all, err := f.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Burgers", all[0].Name)
}

func TestDeleteCategory_Restrict(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "0")
	ctx := context.Background()

	assertKind(t, f.catalog.DeleteCategory(ctx, m.mealA.CategoryID), apperror.KindConflict)
	assertKind(t, f.catalog.DeleteCategory(ctx, 999), apperror.KindNotFound)

	empty := testutil.CreateCategory(t, f.db, "Desserts")
	require.NoError(t, f.catalog.DeleteCategory(ctx, empty.ID))
}

func TestDeleteCategory_CascadeRemovesMealsAndCartLines(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "0")
	ctx := context.Background()
	f.add(t, m.customer.ID, m.mealA.ID, 1)

	svc := NewCatalogService(f.store, config.CategoryDeleteCascade)
	require.NoError(t, svc.DeleteCategory(ctx, m.mealA.CategoryID))

	var meals, lines int64
	require.NoError(t, f.db.Model(&models.Meal{}).Count(&meals).Error)
	require.NoError(t, f.db.Model(&models.CartItem{}).Count(&lines).Error)
	assert.Zero(t, meals)
	assert.Zero(t, lines)
}

func mealIn(categoryID uint, name, price string) MealIn {
	return MealIn{
		Name:        name,
		Description: "house special",
		Price:       testutil.Price(price),
		CategoryID:  categoryID,
		DietaryTags: []string{"vegetarian"},
	}
}

func TestCreateMeal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.CreateProvider(t, f.db, "Green Bowl", "0", "0")
	cat := testutil.CreateCategory(t, f.db, "Salads")

	meal, err := f.catalog.CreateMeal(ctx, p.ID, mealIn(cat.ID, "Caesar", "8.50"))
	require.NoError(t, err)
	assert.True(t, meal.IsAvailable)
	assert.Equal(t, p.ID, meal.ProviderID)
	assert.True(t, meal.Price.Equal(testutil.Price("8.5")))
	assert.Equal(t, []string{"vegetarian"}, []string(meal.DietaryTags))
	require.NotNil(t, meal.Provider)
	require.NotNil(t, meal.Category)

	_, err = f.catalog.CreateMeal(ctx, p.ID, mealIn(cat.ID, "Caesar", "9"))
	assertKind(t, err, apperror.KindConflict)

	_, err = f.catalog.CreateMeal(ctx, p.ID, mealIn(cat.ID, "Free Lunch", "0"))
	assertKind(t, err, apperror.KindInvalidArgument)

	_, err = f.catalog.CreateMeal(ctx, p.ID, mealIn(cat.ID, "Half Cent", "5.005"))
	assertKind(t, err, apperror.KindInvalidArgument)
	assert.Contains(t, err.Error(), "at most 2 decimal places")

	trailing, err := f.catalog.CreateMeal(ctx, p.ID, mealIn(cat.ID, "Trailing Zero", "5.000"))
	require.NoError(t, err)
	assert.True(t, trailing.Price.Equal(testutil.Price("5")))

	_, err = f.catalog.CreateMeal(ctx, p.ID, mealIn(999, "Ghost", "4"))
	assertKind(t, err, apperror.KindNotFound)

	noDesc := mealIn(cat.ID, "Plain", "4")
	noDesc.Description = ""
	_, err = f.catalog.CreateMeal(ctx, p.ID, noDesc)
	assertKind(t, err, apperror.KindInvalidArgument)
}

func TestCreateMeal_RequiresProviderProfile(t *testing.T) {
	f := newFixture(t)
	u := testutil.CreateUser(t, f.db, "chef@example.com", models.RoleProvider)
	cat := testutil.CreateCategory(t, f.db, "Salads")

	_, err := f.catalog.CreateMeal(context.Background(), u.ID, mealIn(cat.ID, "Caesar", "8"))
	assertKind(t, err, apperror.KindInvalidState)
}

func TestListMeals_Filters(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "0")
	ctx := context.Background()
	other := testutil.CreateProvider(t, f.db, "Pizza Place", "0", "0")
	desserts := testutil.CreateCategory(t, f.db, "Desserts")
	testutil.CreateMeal(t, f.db, other.ID, desserts.ID, "Tiramisu", "6")
	require.NoError(t, f.db.Model(&models.Meal{}).Where("id = ?", m.mealB.ID).Update("is_available", false).Error)

	all, err := f.catalog.ListMeals(ctx, repository.MealFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byProvider, err := f.catalog.ListMeals(ctx, repository.MealFilter{ProviderID: m.provider.ID})
	require.NoError(t, err)
	assert.Len(t, byProvider, 2)

	byCategory, err := f.catalog.ListMeals(ctx, repository.MealFilter{CategoryID: desserts.ID})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Tiramisu", byCategory[0].Name)

	search, err := f.catalog.ListMeals(ctx, repository.MealFilter{Query: "tira"})
	require.NoError(t, err)
	assert.Len(t, search, 1)

	available, err := f.catalog.ListMeals(ctx, repository.MealFilter{ProviderID: m.provider.ID, AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, m.mealA.ID, available[0].ID)
}

func TestUpdateMeal(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "0")
	ctx := context.Background()

	price := testutil.Price("7.25")
	off := false
	name := "Meal A Deluxe"
	updated, err := f.catalog.UpdateMeal(ctx, m.mealA.ID, m.provider.ID, MealPatch{Name: &name, Price: &price, IsAvailable: &off})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.True(t, updated.Price.Equal(price))
	assert.False(t, updated.IsAvailable)

	taken := "Meal B"
	_, err = f.catalog.UpdateMeal(ctx, m.mealA.ID, m.provider.ID, MealPatch{Name: &taken})
	assertKind(t, err, apperror.KindConflict)

	zero := testutil.Price("0")
	_, err = f.catalog.UpdateMeal(ctx, m.mealA.ID, m.provider.ID, MealPatch{Price: &zero})
	assertKind(t, err, apperror.KindInvalidArgument)

	other := testutil.CreateProvider(t, f.db, "Pizza Place", "0", "0")
	_, err = f.catalog.UpdateMeal(ctx, m.mealA.ID, other.ID, MealPatch{Name: &taken})
	assertKind(t, err, apperror.KindForbidden)

	_, err = f.catalog.UpdateMeal(ctx, 999, m.provider.ID, MealPatch{})
	assertKind(t, err, apperror.KindNotFound)
}

func TestDeleteMeal(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "0")
	ctx := context.Background()
	f.add(t, m.customer.ID, m.mealA.ID, 2)
	f.add(t, m.customer.ID, m.mealB.ID, 1)

	other := testutil.CreateProvider(t, f.db, "Pizza Place", "0", "0")
	assertKind(t, f.catalog.DeleteMeal(ctx, m.mealA.ID, other.ID), apperror.KindForbidden)

	require.NoError(t, f.catalog.DeleteMeal(ctx, m.mealA.ID, m.provider.ID))
	_, err := f.catalog.GetMeal(ctx, m.mealA.ID)
	assertKind(t, err, apperror.KindNotFound)

	view, err := f.cart.GetCart(ctx, m.customer.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, m.mealB.ID, view.Items[0].MealID)

	assertKind(t, f.catalog.DeleteMeal(ctx, m.mealA.ID, m.provider.ID), apperror.KindNotFound)
}
