package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scope-chat/internal/domain"
	"scope-chat/internal/llm"
	"scope-chat/internal/metrics"
	"scope-chat/internal/service"
)

// ChatHandler mantiene dependencias para los endpoints de chat.
type ChatHandler struct {
	logger      *zap.Logger
	chat        *service.ChatService
	metrics     *metrics.Metrics
	limiter     service.TurnLimiter
	defaultTemp float64
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(
	logger *zap.Logger,
	chat *service.ChatService,
	m *metrics.Metrics,
	limiter service.TurnLimiter,
	defaultTemp float64,
) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		logger:      logger,
		chat:        chat,
		metrics:     m,
		limiter:     limiter,
		defaultTemp: defaultTemp,
	}
}

type identityRequest struct {
	Name      string  `json:"name"`
	StudentID string  `json:"student_id"`
	Group     flexInt `json:"group"`
	Member    string  `json:"member"`
	Consent   string  `json:"consent"`
}

func (r identityRequest) toInput() service.IdentityInput {
	return service.IdentityInput{
		Name:      r.Name,
		StudentID: r.StudentID,
		Group:     int(r.Group),
		Member:    r.Member,
		Consent:   r.Consent,
	}
}

type loadChatResponse struct {
	Messages  []domain.ChatMessage `json:"messages"`
	Name      string               `json:"name"`
	StudentID string               `json:"student_id"`
	Group     int                  `json:"group"`
	Member    string               `json:"member"`
	Consent   string               `json:"consent"`
}

// LoadChat maneja POST /api/load-chat.
func (h *ChatHandler) LoadChat(c *gin.Context) {
	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid load chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.chat.LoadChat(c.Request.Context(), req.toInput())
	if err != nil {
		h.logger.Error("load chat failed",
			zap.Int("group", int(req.Group)),
			zap.String("member", req.Member),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load chat history"})
		return
	}

	c.JSON(http.StatusOK, loadChatResponse{
		Messages:  res.Messages,
		Name:      res.User.Name,
		StudentID: res.User.StudentID,
		Group:     res.User.Group,
		Member:    res.User.Member,
		Consent:   res.User.Consent,
	})
}

type chatRequest struct {
	identityRequest
	Messages    json.RawMessage `json:"messages"`
	Temperature *float64        `json:"temperature"`
	SeenMockIDs flexIDs         `json:"seen_mock_ids"`
}

type chatResponse struct {
	ID      *int64          `json:"id"`
	Content string          `json:"content"`
	Raw     json.RawMessage `json:"raw"`
}

// Chat maneja POST /api/chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if !isJSONArray(req.Messages) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages must be an array"})
		return
	}
	var messages []domain.ChatMessage
	if err := json.Unmarshal(req.Messages, &messages); err != nil {
		h.logger.Warn("invalid chat messages", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if h.limiter != nil && !h.limiter.Allow(c.Request.Context(), service.TurnLimiterKey(int(req.Group), req.Member)) {
		h.metrics.ObserveChatTurn("rate_limited")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
		return
	}

	temperature := h.defaultTemp
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	res, err := h.chat.Chat(c.Request.Context(), service.ChatInput{
		Identity:    req.toInput(),
		Messages:    messages,
		Temperature: temperature,
		SeenMockIDs: req.SeenMockIDs,
	})
	if err != nil {
		h.writeChatError(c, req, err)
		return
	}

	h.metrics.ObserveChatTurn(string(res.Outcome))

	raw := res.Raw
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	c.JSON(http.StatusOK, chatResponse{ID: res.MockID, Content: res.Content, Raw: raw})
}

func (h *ChatHandler) writeChatError(c *gin.Context, req chatRequest, err error) {
	var upErr *llm.UpstreamError
	switch {
	case errors.Is(err, service.ErrInvalidMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.As(err, &upErr):
		h.metrics.ObserveUpstreamError(upErr.StatusCode)
		h.logger.Warn("upstream error passthrough",
			zap.Int("status", upErr.StatusCode),
			zap.Int("group", int(req.Group)),
		)
		contentType := upErr.ContentType
		if contentType == "" {
			contentType = "text/plain; charset=utf-8"
		}
		c.Header("Content-Type", contentType)
		c.Data(upErr.StatusCode, contentType, upErr.Body)
	default:
		h.logger.Error("chat failed",
			zap.Int("group", int(req.Group)),
			zap.String("member", req.Member),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
