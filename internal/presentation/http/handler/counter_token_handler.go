package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// CounterTokenHandler exposes the tokens issued today
type CounterTokenHandler struct {
	tokenService *service.CounterTokenService
}

// NewCounterTokenHandler creates a new counter token handler
func NewCounterTokenHandler(tokenService *service.CounterTokenService) *CounterTokenHandler {
	return &CounterTokenHandler{tokenService: tokenService}
}

// ListToday returns the last token of every counter for today
func (h *CounterTokenHandler) ListToday(c *gin.Context) {
	tokens, err := h.tokenService.ListToday(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Counter tokens retrieved successfully", gin.H{
		"date":   h.tokenService.Today(),
		"tokens": tokens,
	})
}
