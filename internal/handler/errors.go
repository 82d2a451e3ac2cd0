package handler

import (
	"errors"
	"net/http"

	"github.com/LordMilo/SmartTaskManager/internal/logger"
	"github.com/LordMilo/SmartTaskManager/internal/service"
	"github.com/LordMilo/SmartTaskManager/internal/state"

	"github.com/gin-gonic/gin"
)

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, state.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, state.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("request.failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
