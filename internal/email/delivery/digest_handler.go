package delivery

import (
	"errors"
	"log"
	"net/http"

	authdelivery "storymail-backend/internal/auth/delivery"
	emaildto "storymail-backend/internal/email/dto"
	"storymail-backend/internal/email/usecase"

	"github.com/gin-gonic/gin"
)

// DigestHandler handles digest report generation
type DigestHandler struct {
	digestUsecase usecase.DigestUsecase
}

func NewDigestHandler(digestUsecase usecase.DigestUsecase) *DigestHandler {
	return &DigestHandler{
		digestUsecase: digestUsecase,
	}
}

// POST /api/digest
// GenerateDigest creates and persists a digest over the requested window.
// Two identical requests create two distinct reports.
func (h *DigestHandler) GenerateDigest(c *gin.Context) {
	claims := authdelivery.CurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req emaildto.DigestRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.digestUsecase.GenerateDigest(c.Request.Context(), claims.Subject, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, usecase.ErrNoEmails):
			c.JSON(http.StatusNotFound, gin.H{"error": "No emails found in the specified date range"})
		case errors.Is(err, usecase.ErrInvalidDate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("[Digest] Error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating digest: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
