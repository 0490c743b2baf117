package handlers

import (
	"net/http"

	"foodhub-api/middleware"
	"foodhub-api/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CustomerHandler serves the user directory: admins list and remove users, everyone manages their own profile
type CustomerHandler struct {
	svc *services.UserService
	log *logrus.Logger
}

func NewCustomerHandler(svc *services.UserService, log *logrus.Logger) *CustomerHandler {
	return &CustomerHandler{svc: svc, log: log}
}

func (h *CustomerHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Users retrieved successfully", users)
}

// GetProfile returns the authenticated user's profile
func (h *CustomerHandler) GetProfile(c *gin.Context) {
	user, err := h.svc.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "User retrieved successfully", user)
}

func (h *CustomerHandler) UpdateProfile(c *gin.Context) {
	var in services.ProfileIn
	if !bindJSON(c, h.log, &in) {
		return
	}
	user, err := h.svc.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", user)
}

func (h *CustomerHandler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, h.log, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "User deleted successfully", nil)
}
