package handlers

import (
	"net/http"
	"time"

	"foodhub-api/middleware"
	"foodhub-api/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	svc          *services.AuthService
	log          *logrus.Logger
	secureCookie bool
}

func NewAuthHandler(svc *services.AuthService, log *logrus.Logger, secureCookie bool) *AuthHandler {
	return &AuthHandler{svc: svc, log: log, secureCookie: secureCookie}
}

// Register creates a new user account and sends the verification email
func (h *AuthHandler) Register(c *gin.Context) {
	var in services.RegisterIn
	if !bindJSON(c, h.log, &in) {
		return
	}
	user, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Account created successfully. Check your inbox to verify your email.", user)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	user, err := h.svc.VerifyEmail(c.Request.Context(), c.Query("token"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Email verified successfully", user)
}

// Login authenticates a user, returns a JWT and sets it as the session cookie
func (h *AuthHandler) Login(c *gin.Context) {
	var in services.LoginIn
	if !bindJSON(c, h.log, &in) {
		return
	}
	session, err := h.svc.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, session.Token, maxAge, "/", "", h.secureCookie, true)
	respond(c, http.StatusOK, "Login successful", session)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	respond(c, http.StatusOK, "Logged out", nil)
}
