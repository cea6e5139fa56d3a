// Package chat は外部チャット補完APIへの中継を提供する。
//
// 受け取ったリクエストボディを改変せずに上流へ転送し、
// 上流の応答を統一エンベロープ（success/data/error）に包んで返す。
// 認証情報はサーバー側にのみ保持され、ブラウザへ露出しない。
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// 上流応答ボディの読み取り上限（1MB）
const maxResponseBodySize = 1 << 20

// MetricsRecorder はチャット中継メトリクスの記録インターフェース。
type MetricsRecorder interface {
	RecordChatRelay(statusCode int, duration time.Duration)
}

// UpstreamError は上流APIの非2xx応答を表す。
// エラーメッセージは「API error (<status>): <body>」形式で、
// エンベロープにそのまま載せられる。
type UpstreamError struct {
	StatusCode int
	Body       string
}

// Error はerrorインターフェースを実装する。
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Body)
}

// Client はチャット補完APIへの送信クライアント。
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	metrics    MetricsRecorder // nilの場合は記録しない
}

// NewClient はClientの新しいインスタンスを生成する。
// httpClientにはSSRF防止付きクライアントを渡す。
func NewClient(httpClient *http.Client, endpoint, apiKey string, metrics MetricsRecorder) *Client {
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		apiKey:     apiKey,
		metrics:    metrics,
	}
}

// Configured は認証情報が設定されているかを返す。
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Send はリクエストボディをそのまま上流へ転送し、成功応答のJSONを返す。
// 上流が非2xxを返した場合はUpstreamErrorを返す。
// ボディは改変しない（モデル名・メッセージ配列は呼び出し元の入力のまま）。
func (c *Client) Send(ctx context.Context, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(0, time.Since(start))
		return nil, fmt.Errorf("failed to reach chat API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	c.record(resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to read chat API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("チャットAPIがエラーを返しました",
			slog.Int("status", resp.StatusCode),
			slog.Int("body_size", len(respBody)),
		)
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	if !json.Valid(respBody) {
		return nil, fmt.Errorf("chat API returned invalid JSON")
	}

	return json.RawMessage(respBody), nil
}

func (c *Client) record(statusCode int, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordChatRelay(statusCode, duration)
	}
}
