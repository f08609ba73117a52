package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/pkg/genai"
	"github.com/microcosm-cc/bluemonday"
)

const chatRateScope = "chat"

type ChatService interface {
	Reply(ctx context.Context, clientKey string, req *models.ChatRequest) (*models.ChatResponse, error)
}

type chatService struct {
	client    genai.Client
	limiter   repository.RateLimitRepository
	cfg       *config.Chat
	sanitizer *bluemonday.Policy
}

func NewChatService(client genai.Client, limiter repository.RateLimitRepository, cfg *config.Chat) ChatService {
	return &chatService{
		client:    client,
		limiter:   limiter,
		cfg:       cfg,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *chatService) clean(text string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(text))
}

// buildMessages prepends the system prompt and keeps only the most recent
// history turns.
func (s *chatService) buildMessages(message string, history []models.ChatMessage) []genai.Message {
	if s.cfg.MaxHistory >= 0 && len(history) > s.cfg.MaxHistory {
		history = history[len(history)-s.cfg.MaxHistory:]
	}

	messages := make([]genai.Message, 0, len(history)+2)
	messages = append(messages, genai.Message{Role: "system", Content: s.cfg.SystemPrompt})

	for _, turn := range history {
		content := s.clean(turn.Content)
		if content == "" {
			continue
		}

		messages = append(messages, genai.Message{Role: string(turn.Role), Content: content})
	}

	return append(messages, genai.Message{Role: string(models.ChatRoleUser), Content: message})
}

func (s *chatService) Reply(ctx context.Context, clientKey string, req *models.ChatRequest) (*models.ChatResponse, error) {
	logger := middleware.LoggerFromContext(ctx)

	message := s.clean(req.Message)
	if message == "" {
		return nil, appErrors.AddValidationError("message", "is required")
	}

	if err := checkRateLimit(ctx, s.limiter, chatRateScope, clientKey); err != nil {
		return nil, err
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	reply, err := s.client.Complete(ctx, s.buildMessages(message, req.ConversationHistory), s.cfg.MaxTokens)
	if err != nil {
		logger.Error("Chat completion failed", slog.Any("error", err))

		if errors.Is(err, context.DeadlineExceeded) {
			metrics.RecordChatReply("timeout")
			return nil, appErrors.TimeoutError("The assistant took too long to answer").WithError(err)
		}

		metrics.RecordChatReply("error")

		return nil, appErrors.UpstreamUnavailableError("The assistant is unavailable right now").WithError(err)
	}

	metrics.RecordChatReply("ok")

	return &models.ChatResponse{Message: strings.TrimSpace(reply)}, nil
}
