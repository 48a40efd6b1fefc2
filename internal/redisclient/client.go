package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// maxSessionMessages caps stored chat history per session.
const maxSessionMessages = 50

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// ChatMessage is one entry in a chat session's history.
type ChatMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	IsUser    bool      `json:"is_user"`
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("chat:session:%s", sessionID)
}

// AppendChatMessage pushes a message onto a session's history, trims it to
// the cap, and refreshes the TTL.
func (c *Client) AppendChatMessage(ctx context.Context, sessionID string, msg ChatMessage, ttl time.Duration) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := sessionKey(sessionID)
	pipe := c.rdb.Pipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, -maxSessionMessages, -1)
	pipe.Expire(ctx, key, ttl)

	_, err = pipe.Exec(ctx)
	return err
}

// GetChatHistory returns a session's stored messages, oldest first. An
// unknown session yields an empty history.
func (c *Client) GetChatHistory(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	raw, err := c.rdb.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func statusCacheKey(orderNumber string) string {
	return fmt.Sprintf("status:%s", orderNumber)
}

// CacheStatusSummary stores a serialized status summary for a short TTL.
func (c *Client) CacheStatusSummary(ctx context.Context, orderNumber string, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, statusCacheKey(orderNumber), payload, ttl).Err()
}

// GetCachedStatusSummary returns a cached summary, nil on miss.
func (c *Client) GetCachedStatusSummary(ctx context.Context, orderNumber string) ([]byte, error) {
	payload, err := c.rdb.Get(ctx, statusCacheKey(orderNumber)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// InvalidateStatusSummary drops a cached summary after a status change.
func (c *Client) InvalidateStatusSummary(ctx context.Context, orderNumber string) error {
	return c.rdb.Del(ctx, statusCacheKey(orderNumber)).Err()
}
