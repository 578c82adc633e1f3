package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultChannelPrefix = "xplorer:channel:"
	webhookClientTimeout = 10 * time.Second
	webhookMaxErrorBytes = 4 << 10
)

// RedisPublisher 通过 Redis PUBLISH 把文本投递给订阅了该频道的聊天网关
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: DefaultChannelPrefix}
}

// Topic 返回频道 ID 对应的 Redis channel 名
func (p *RedisPublisher) Topic(channelID string) string {
	return p.prefix + channelID
}

func (p *RedisPublisher) Publish(ctx context.Context, channelID, content string) error {
	if err := p.client.Publish(ctx, p.Topic(channelID), content).Err(); err != nil {
		return fmt.Errorf("redis publish to %s: %w", p.Topic(channelID), err)
	}
	return nil
}

// WebhookPublisher 以 {"content": ...} 的形式 POST 到 webhook（兼容 Discord webhook）
type WebhookPublisher struct {
	url    string
	client *http.Client
}

func NewWebhookPublisher(url string) *WebhookPublisher {
	return &WebhookPublisher{
		url:    url,
		client: &http.Client{Timeout: webhookClientTimeout},
	}
}

type webhookPayload struct {
	Content   string `json:"content"`
	ChannelID string `json:"channel_id,omitempty"`
}

func (p *WebhookPublisher) Publish(ctx context.Context, channelID, content string) error {
	body, err := json.Marshal(webhookPayload{Content: content, ChannelID: channelID})
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, webhookMaxErrorBytes))
		return fmt.Errorf("webhook: http %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}
