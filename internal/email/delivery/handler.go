package delivery

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	authdelivery "storymail-backend/internal/auth/delivery"
	emaildto "storymail-backend/internal/email/dto"
	"storymail-backend/internal/email/usecase"

	"github.com/gin-gonic/gin"
)

type EmailHandler struct {
	emailUsecase usecase.EmailUsecase
}

func NewEmailHandler(emailUsecase usecase.EmailUsecase) *EmailHandler {
	return &EmailHandler{
		emailUsecase: emailUsecase,
	}
}

// POST /api/postmark/inbound
// PostmarkInbound ingests one webhook delivery. Internal failures are
// reported as a structured error body, never as a panic.
func (h *EmailHandler) PostmarkInbound(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var payload emaildto.InboundEmailRequest
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.emailUsecase.IngestInbound(c.Request.Context(), &payload, raw); err != nil {
		log.Printf("[PostmarkInbound] Error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /api/categories/stats
func (h *EmailHandler) CategoryStats(c *gin.Context) {
	claims := authdelivery.CurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	stats, err := h.emailUsecase.CategoryStats(claims.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GET /api/emails?category=<cat>
func (h *EmailHandler) ListEmails(c *gin.Context) {
	claims := authdelivery.CurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	emails, err := h.emailUsecase.ListByCategory(claims.Subject, c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]emaildto.EmailListItem, 0, len(emails))
	for _, email := range emails {
		items = append(items, emaildto.NewEmailListItem(email))
	}
	c.JSON(http.StatusOK, items)
}

// GET /api/emails/:id
func (h *EmailHandler) GetEmailByID(c *gin.Context) {
	claims := authdelivery.CurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	email, err := h.emailUsecase.GetEmailByID(claims.Subject, c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if email == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Email not found or you don't have permission to view it"})
		return
	}

	c.JSON(http.StatusOK, emaildto.NewEmailDetailResponse(email))
}

// POST /api/chat
func (h *EmailHandler) Chat(c *gin.Context) {
	claims := authdelivery.CurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req emaildto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No query provided"})
		return
	}

	resp, err := h.emailUsecase.Chat(c.Request.Context(), claims.Subject, req.Query)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrNoQuery):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No query provided"})
		case errors.Is(err, usecase.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			log.Printf("[Chat] Error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing query: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GET /api/dashboard/stats
func (h *EmailHandler) DashboardStats(c *gin.Context) {
	claims := authdelivery.CurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	stats, err := h.emailUsecase.DashboardStats(claims.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
