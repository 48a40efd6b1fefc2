// Package chat implements the customer-facing chatbot: intent detection
// through an external dialog service, order-status fulfillment, and
// redis-backed session history.
package chat

import (
	"context"
	"time"

	"frameguru/internal/redisclient"
	"frameguru/internal/service"
	"frameguru/internal/util"

	"go.uber.org/zap"
)

const intentOrderStatus = "order_status"

// StatusLookup resolves an order number into a status summary.
type StatusLookup interface {
	Lookup(ctx context.Context, orderNumber string) (*service.StatusSummary, error)
}

// SessionStore holds per-session chat history.
type SessionStore interface {
	AppendChatMessage(ctx context.Context, sessionID string, msg redisclient.ChatMessage, ttl time.Duration) error
	GetChatHistory(ctx context.Context, sessionID string) ([]redisclient.ChatMessage, error)
}

// Response is the chat service's answer to one message.
type Response struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Data    *service.StatusDetails `json:"data,omitempty"`
}

// Service processes chat messages. Session history lives in redis with a
// TTL, not in process memory, so any instance can serve any session.
type Service struct {
	intents    IntentClient
	statusQry  StatusLookup
	sessions   SessionStore
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewService creates a chat service.
func NewService(intents IntentClient, statusQry StatusLookup, sessions SessionStore, sessionTTL time.Duration) *Service {
	return &Service{
		intents:    intents,
		statusQry:  statusQry,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     util.GetLogger(),
	}
}

// ProcessMessage classifies a message and answers it, recording both sides
// of the exchange in the session history. Failures produce a generic,
// non-leaking reply.
func (s *Service) ProcessMessage(ctx context.Context, sessionID, message string) *Response {
	ctx, span := util.StartSpan(ctx, "ChatService.ProcessMessage")
	defer span.End()

	s.saveMessage(ctx, sessionID, message, true)

	response := s.answer(ctx, sessionID, message)

	s.saveMessage(ctx, sessionID, response.Message, false)
	return response
}

func (s *Service) answer(ctx context.Context, sessionID, message string) *Response {
	result, err := s.intents.DetectIntent(ctx, sessionID, message)
	if err != nil {
		s.logger.Warn("Intent detection failed", zap.Error(err))
		util.ChatMessagesTotal.WithLabelValues("error").Inc()
		return &Response{
			Type:    "error",
			Message: "Sorry, I encountered an error processing your request. Please try again later.",
		}
	}

	util.ChatMessagesTotal.WithLabelValues(result.Intent).Inc()

	if result.Intent == intentOrderStatus {
		orderNumber := result.Parameters["order_number"]
		if orderNumber != "" {
			return s.orderStatusResponse(ctx, orderNumber)
		}
	}

	return &Response{Type: "text", Message: result.FulfillmentText}
}

func (s *Service) orderStatusResponse(ctx context.Context, orderNumber string) *Response {
	summary, err := s.statusQry.Lookup(ctx, orderNumber)
	if err != nil {
		s.logger.Error("Status lookup failed",
			zap.String("order_number", orderNumber),
			zap.Error(err))
		return &Response{
			Type:    "error",
			Message: "Sorry, I couldn't retrieve your order status right now. Please try again later.",
		}
	}
	return &Response{
		Type:    intentOrderStatus,
		Message: summary.Message,
		Data:    summary.Details,
	}
}

// FulfillOrderStatus serves the dialog service's webhook: given the
// extracted order number, it returns the sentence the bot should speak.
func (s *Service) FulfillOrderStatus(ctx context.Context, orderNumber string) string {
	if orderNumber == "" {
		return "What's your order number? You can find it in your confirmation email."
	}

	summary, err := s.statusQry.Lookup(ctx, orderNumber)
	if err != nil {
		s.logger.Error("Webhook status lookup failed",
			zap.String("order_number", orderNumber),
			zap.Error(err))
		return "Sorry, I couldn't retrieve your order status at this moment. Please try again later."
	}
	return summary.Message
}

// History returns a session's stored messages, oldest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]redisclient.ChatMessage, error) {
	return s.sessions.GetChatHistory(ctx, sessionID)
}

func (s *Service) saveMessage(ctx context.Context, sessionID, message string, isUser bool) {
	err := s.sessions.AppendChatMessage(ctx, sessionID, redisclient.ChatMessage{
		Message:   message,
		Timestamp: time.Now(),
		IsUser:    isUser,
	}, s.sessionTTL)
	if err != nil {
		s.logger.Warn("Failed to save chat message",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}
