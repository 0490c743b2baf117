package handlers

import (
	"net/http"

	"foodhub-api/middleware"
	"foodhub-api/repository"
	"foodhub-api/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CatalogHandler struct {
	svc *services.CatalogService
	log *logrus.Logger
}

func NewCatalogHandler(svc *services.CatalogService, log *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: log}
}

// ListMeals returns meals, optionally filtered by categoryId, providerId, q and available (public)
func (h *CatalogHandler) ListMeals(c *gin.Context) {
	categoryID, err := queryID(c, "categoryId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	providerID, err := queryID(c, "providerId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	meals, err := h.svc.ListMeals(c.Request.Context(), repository.MealFilter{
		CategoryID:    categoryID,
		ProviderID:    providerID,
		Query:         c.Query("q"),
		AvailableOnly: c.Query("available") == "true",
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Meals retrieved successfully", meals)
}

func (h *CatalogHandler) GetMeal(c *gin.Context) {
	id, ok := paramID(c, h.log, "mealId")
	if !ok {
		return
	}
	meal, err := h.svc.GetMeal(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Meal retrieved successfully", meal)
}

// CreateMeal adds a meal to the calling provider's menu
func (h *CatalogHandler) CreateMeal(c *gin.Context) {
	var in services.MealIn
	if !bindJSON(c, h.log, &in) {
		return
	}
	meal, err := h.svc.CreateMeal(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Meal created successfully", meal)
}

func (h *CatalogHandler) UpdateMeal(c *gin.Context) {
	id, ok := paramID(c, h.log, "mealId")
	if !ok {
		return
	}
	var patch services.MealPatch
	if !bindJSON(c, h.log, &patch) {
		return
	}
	meal, err := h.svc.UpdateMeal(c.Request.Context(), id, middleware.GetUserID(c), patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Meal updated successfully", meal)
}

func (h *CatalogHandler) DeleteMeal(c *gin.Context) {
	id, ok := paramID(c, h.log, "mealId")
	if !ok {
		return
	}
	if err := h.svc.DeleteMeal(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Meal deleted successfully", nil)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Categories retrieved successfully", categories)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var in services.CategoryIn
	if !bindJSON(c, h.log, &in) {
		return
	}
	category, err := h.svc.CreateCategory(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Category created successfully", category)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, h.log, "id")
	if !ok {
		return
	}
	var in services.CategoryIn
	if !bindJSON(c, h.log, &in) {
		return
	}
	category, err := h.svc.UpdateCategory(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Category updated successfully", category)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, h.log, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Category deleted successfully", nil)
}
