package handlers

import (
	"context"
	"net/http"

	"foodhub-api/models"
	"foodhub-api/statemachine"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports liveness and database reachability
func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "FoodHub Marketplace API",
			"version": "1.0.0",
		})
	}
}

// Welcome lists the entry points of the API
func Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the FoodHub Marketplace API",
		"docs":    "/api/orders/state-machine",
		"health":  "/health",
		"roles":   []models.UserRole{models.RoleCustomer, models.RoleProvider, models.RoleAdmin},
	})
}

// GetStateMachineInfo returns the delivery state machine for informational purposes
func GetStateMachineInfo(c *gin.Context) {
	respond(c, http.StatusOK, "", gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"initial_state":   models.StatusPlaced,
		"terminal_states": []models.DeliveryStatus{models.StatusDelivered},
		"payment_states":  []models.PaymentStatus{models.PaymentPending, models.PaymentCompleted, models.PaymentFailed},
		"description":     "Order delivery lifecycle. Orders can be cancelled by the customer while payment is not COMPLETED.",
	})
}
