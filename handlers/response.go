package handlers

import (
	"errors"
	"strconv"

	"foodhub-api/apperror"
	"foodhub-api/middleware"
	"foodhub-api/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Envelope is the body of every API response
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// respondError maps the error taxonomy onto a status code. Internal details are
// logged with the request id and never sent to the client.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	kind := apperror.KindOf(err)
	message := "Internal Server Error"

	var appErr *apperror.Error
	if kind != apperror.KindInternal && errors.As(err, &appErr) {
		message = appErr.Message
	} else {
		_ = c.Error(err)
		log.WithError(err).WithField("request_id", middleware.GetRequestID(c)).Error("unhandled error")
	}
	c.AbortWithStatusJSON(kind.HTTPStatus(), Envelope{Success: false, Message: message})
}

func bindJSON(c *gin.Context, log *logrus.Logger, in interface{}) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		respondError(c, log, services.InputError(err))
		return false
	}
	return true
}

func paramID(c *gin.Context, log *logrus.Logger, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, log, apperror.InvalidArgument("Invalid "+name))
		return 0, false
	}
	return uint(id), true
}

func queryID(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperror.InvalidArgument("Invalid " + name)
	}
	return uint(id), nil
}
