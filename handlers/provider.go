package handlers

import (
	"net/http"

	"foodhub-api/middleware"
	"foodhub-api/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProviderHandler struct {
	svc *services.ProviderService
	log *logrus.Logger
}

func NewProviderHandler(svc *services.ProviderService, log *logrus.Logger) *ProviderHandler {
	return &ProviderHandler{svc: svc, log: log}
}

// RegisterProvider creates the caller's provider profile
func (h *ProviderHandler) RegisterProvider(c *gin.Context) {
	var in services.ProviderIn
	if !bindJSON(c, h.log, &in) {
		return
	}
	provider, err := h.svc.Register(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Provider registered successfully", provider)
}

func (h *ProviderHandler) ListProviders(c *gin.Context) {
	providers, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Providers retrieved successfully", providers)
}

func (h *ProviderHandler) GetProvider(c *gin.Context) {
	id, ok := paramID(c, h.log, "id")
	if !ok {
		return
	}
	provider, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Provider retrieved successfully", provider)
}

// UpdateProvider patches the caller's own profile
func (h *ProviderHandler) UpdateProvider(c *gin.Context) {
	var patch services.ProviderPatch
	if !bindJSON(c, h.log, &patch) {
		return
	}
	provider, err := h.svc.Update(c.Request.Context(), middleware.GetUserID(c), patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Provider updated successfully", provider)
}

func (h *ProviderHandler) DeleteProvider(c *gin.Context) {
	id, ok := paramID(c, h.log, "id")
	if !ok {
		return
	}
	caller := middleware.GetIdentity(c)
	if err := h.svc.Delete(c.Request.Context(), id, caller.ID, caller.Role); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Provider deleted successfully", nil)
}
