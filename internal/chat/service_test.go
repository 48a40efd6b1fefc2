package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"frameguru/internal/redisclient"
	"frameguru/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIntentClient struct {
	result *IntentResult
	err    error
}

func (f *fakeIntentClient) DetectIntent(ctx context.Context, sessionID, text string) (*IntentResult, error) {
	return f.result, f.err
}

type fakeStatusLookup struct {
	summary *service.StatusSummary
	err     error
	calls   []string
}

func (f *fakeStatusLookup) Lookup(ctx context.Context, orderNumber string) (*service.StatusSummary, error) {
	f.calls = append(f.calls, orderNumber)
	return f.summary, f.err
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string][]redisclient.ChatMessage
	err      error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string][]redisclient.ChatMessage)}
}

func (f *fakeSessionStore) AppendChatMessage(ctx context.Context, sessionID string, msg redisclient.ChatMessage, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sessions[sessionID] = append(f.sessions[sessionID], msg)
	return nil
}

func (f *fakeSessionStore) GetChatHistory(ctx context.Context, sessionID string) ([]redisclient.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[sessionID], nil
}

func TestProcessMessageOrderStatusIntent(t *testing.T) {
	intents := &fakeIntentClient{
		result: &IntentResult{
			Intent:     "order_status",
			Parameters: map[string]string{"order_number": "FG-20250301-A1B2C3"},
		},
	}
	lookup := &fakeStatusLookup{
		summary: &service.StatusSummary{
			Found:   true,
			Message: "Your order #FG-20250301-A1B2C3 is currently in production.",
			Details: &service.StatusDetails{
				OrderNumber: "FG-20250301-A1B2C3",
				Status:      "in_production",
			},
		},
	}
	sessions := newFakeSessionStore()
	svc := NewService(intents, lookup, sessions, time.Hour)

	resp := svc.ProcessMessage(context.Background(), "sess-1", "where is my order FG-20250301-A1B2C3")

	assert.Equal(t, "order_status", resp.Type)
	assert.Equal(t, "Your order #FG-20250301-A1B2C3 is currently in production.", resp.Message)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "in_production", resp.Data.Status)
	assert.Equal(t, []string{"FG-20250301-A1B2C3"}, lookup.calls)
}

func TestProcessMessageRecordsBothSides(t *testing.T) {
	intents := &fakeIntentClient{
		result: &IntentResult{Intent: "greeting", FulfillmentText: "Hi! How can I help you today?"},
	}
	sessions := newFakeSessionStore()
	svc := NewService(intents, &fakeStatusLookup{}, sessions, time.Hour)

	svc.ProcessMessage(context.Background(), "sess-2", "hello")

	history, err := sessions.GetChatHistory(context.Background(), "sess-2")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].IsUser)
	assert.Equal(t, "hello", history[0].Message)
	assert.False(t, history[1].IsUser)
	assert.Equal(t, "Hi! How can I help you today?", history[1].Message)
}

func TestProcessMessageIntentWithoutOrderNumberFallsThrough(t *testing.T) {
	intents := &fakeIntentClient{
		result: &IntentResult{
			Intent:          "order_status",
			Parameters:      map[string]string{},
			FulfillmentText: "What's your order number?",
		},
	}
	lookup := &fakeStatusLookup{}
	svc := NewService(intents, lookup, newFakeSessionStore(), time.Hour)

	resp := svc.ProcessMessage(context.Background(), "sess-3", "where is my order")

	assert.Equal(t, "text", resp.Type)
	assert.Equal(t, "What's your order number?", resp.Message)
	assert.Empty(t, lookup.calls)
}

func TestProcessMessageIntentErrorGivesGenericReply(t *testing.T) {
	intents := &fakeIntentClient{err: errors.New("dialog service unreachable")}
	svc := NewService(intents, &fakeStatusLookup{}, newFakeSessionStore(), time.Hour)

	resp := svc.ProcessMessage(context.Background(), "sess-4", "hello")

	assert.Equal(t, "error", resp.Type)
	assert.Equal(t, "Sorry, I encountered an error processing your request. Please try again later.", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestProcessMessageLookupErrorGivesGenericReply(t *testing.T) {
	intents := &fakeIntentClient{
		result: &IntentResult{
			Intent:     "order_status",
			Parameters: map[string]string{"order_number": "FG-20250301-A1B2C3"},
		},
	}
	lookup := &fakeStatusLookup{err: errors.New("db down")}
	svc := NewService(intents, lookup, newFakeSessionStore(), time.Hour)

	resp := svc.ProcessMessage(context.Background(), "sess-5", "order status please")

	assert.Equal(t, "error", resp.Type)
	assert.Contains(t, resp.Message, "couldn't retrieve your order status")
}

func TestProcessMessageSessionStoreFailureDoesNotBlockReply(t *testing.T) {
	intents := &fakeIntentClient{
		result: &IntentResult{Intent: "greeting", FulfillmentText: "Hello!"},
	}
	sessions := newFakeSessionStore()
	sessions.err = errors.New("redis gone")
	svc := NewService(intents, &fakeStatusLookup{}, sessions, time.Hour)

	resp := svc.ProcessMessage(context.Background(), "sess-6", "hi")

	assert.Equal(t, "text", resp.Type)
	assert.Equal(t, "Hello!", resp.Message)
}

func TestFulfillOrderStatus(t *testing.T) {
	lookup := &fakeStatusLookup{
		summary: &service.StatusSummary{
			Found:   true,
			Message: "Your order #FG-20250301-A1B2C3 has been shipped with tracking number: 1Z999.",
		},
	}
	svc := NewService(&fakeIntentClient{}, lookup, newFakeSessionStore(), time.Hour)

	text := svc.FulfillOrderStatus(context.Background(), "FG-20250301-A1B2C3")
	assert.Contains(t, text, "has been shipped")

	text = svc.FulfillOrderStatus(context.Background(), "")
	assert.Contains(t, text, "What's your order number?")
	assert.Equal(t, []string{"FG-20250301-A1B2C3"}, lookup.calls)
}
