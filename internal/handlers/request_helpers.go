package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"repairhub/internal/apperr"
	"repairhub/internal/validation"
)

const requestTimeout = 10 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError renders err as {error}. Unknown errors become the generic 500
// and are logged with their cause.
func respondError(c *gin.Context, route string, err error) {
	appErr := apperr.From(err)
	if appErr.Status() >= http.StatusInternalServerError {
		zap.L().Named("http").Error("request failed", zap.String("route", route), zap.Error(err))
	} else {
		zap.L().Named("http").Debug("request rejected",
			zap.String("route", route),
			zap.Int("status", appErr.Status()),
			zap.String("message", appErr.Message()),
		)
	}
	c.AbortWithStatusJSON(appErr.Status(), gin.H{"error": appErr.Message()})
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	respondError(c, route, apperr.New(status, message))
}

func respondSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": message, "data": data})
}

// bindAndValidate decodes the JSON body into dst and checks it. On failure
// the 400 is already written.
func bindAndValidate(c *gin.Context, route string, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondWithError(c, http.StatusBadRequest, route, validation.DescribeDecodeError(err))
		return false
	}
	return validate(c, route, dst)
}

// bindFormAndValidate accepts a form post or JSON, chosen by Content-Type.
func bindFormAndValidate(c *gin.Context, route string, dst interface{}) bool {
	if err := c.ShouldBind(dst); err != nil {
		respondWithError(c, http.StatusBadRequest, route, validation.DescribeDecodeError(err))
		return false
	}
	return validate(c, route, dst)
}

func validate(c *gin.Context, route string, dst interface{}) bool {
	if err := validation.Struct(dst); err != nil {
		respondWithError(c, http.StatusBadRequest, route, err.Error())
		return false
	}
	return true
}

// objectIDParam parses a path parameter; an invalid id is reported as notFound.
func objectIDParam(c *gin.Context, route, name string, notFound *apperr.Error) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		respondError(c, route, notFound)
		return primitive.NilObjectID, false
	}
	return id, true
}
