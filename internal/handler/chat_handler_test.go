package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brunomgama/utility-tool-sub002/internal/chat"
)

// --- モック定義 ---

type mockChatClient struct {
	configured bool
	sendFn     func(ctx context.Context, body []byte) (json.RawMessage, error)
	sentBodies [][]byte
}

func (m *mockChatClient) Configured() bool {
	return m.configured
}

func (m *mockChatClient) Send(ctx context.Context, body []byte) (json.RawMessage, error) {
	m.sentBodies = append(m.sentBodies, body)
	if m.sendFn != nil {
		return m.sendFn(ctx, body)
	}
	return json.RawMessage(`{}`), nil
}

func decodeChatEnvelope(t *testing.T, w *httptest.ResponseRecorder) chatEnvelope {
	t.Helper()
	var envelope chatEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("エンベロープのデコードに失敗: %v", err)
	}
	return envelope
}

// --- テスト ---

func TestChatHandler_Success_ForwardsUpstreamResponse(t *testing.T) {
	client := &mockChatClient{
		configured: true,
		sendFn: func(_ context.Context, _ []byte) (json.RawMessage, error) {
			return json.RawMessage(`{"choices":[{"message":{"content":"こんにちは"}}]}`), nil
		},
	}
	h := NewChatHandler(client)

	reqBody := `{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/send-message", strings.NewReader(reqBody))
	w := httptest.NewRecorder()
	h.SendMessage(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	envelope := decodeChatEnvelope(t, w)
	if !envelope.Success {
		t.Error("success = false, want true")
	}
	if !strings.Contains(string(envelope.Data), "こんにちは") {
		t.Errorf("data = %s, want 上流の応答を含む", envelope.Data)
	}

	// ボディは改変せずに転送される
	if len(client.sentBodies) != 1 {
		t.Fatalf("送信回数 = %d, want 1", len(client.sentBodies))
	}
	if got := string(client.sentBodies[0]); got != reqBody {
		t.Errorf("転送ボディ = %q, want %q", got, reqBody)
	}
}

func TestChatHandler_NotConfigured_Returns500(t *testing.T) {
	client := &mockChatClient{configured: false}
	h := NewChatHandler(client)

	req := httptest.NewRequest(http.MethodPost, "/api/send-message", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	h.SendMessage(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	envelope := decodeChatEnvelope(t, w)
	if envelope.Success {
		t.Error("success = true, want false")
	}
	if envelope.Error != "API credentials are not configured" {
		t.Errorf("error = %q, want %q", envelope.Error, "API credentials are not configured")
	}
	if len(client.sentBodies) != 0 {
		t.Error("未設定時に上流へ転送されてはいけない")
	}
}

func TestChatHandler_UpstreamError_MirrorsStatus(t *testing.T) {
	client := &mockChatClient{
		configured: true,
		sendFn: func(_ context.Context, _ []byte) (json.RawMessage, error) {
			return nil, &chat.UpstreamError{StatusCode: http.StatusServiceUnavailable, Body: "overloaded"}
		},
	}
	h := NewChatHandler(client)

	req := httptest.NewRequest(http.MethodPost, "/api/send-message", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	h.SendMessage(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	envelope := decodeChatEnvelope(t, w)
	if envelope.Success {
		t.Error("success = true, want false")
	}
	if envelope.Error != "API error (503): overloaded" {
		t.Errorf("error = %q, want %q", envelope.Error, "API error (503): overloaded")
	}
}

func TestChatHandler_TransportFailure_Returns500(t *testing.T) {
	client := &mockChatClient{
		configured: true,
		sendFn: func(_ context.Context, _ []byte) (json.RawMessage, error) {
			return nil, errors.New("connection refused")
		},
	}
	h := NewChatHandler(client)

	req := httptest.NewRequest(http.MethodPost, "/api/send-message", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	h.SendMessage(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	envelope := decodeChatEnvelope(t, w)
	if envelope.Error != "connection refused" {
		t.Errorf("error = %q, want %q", envelope.Error, "connection refused")
	}
}

func TestChatHandler_InvalidJSONBody_Returns500(t *testing.T) {
	client := &mockChatClient{configured: true}
	h := NewChatHandler(client)

	req := httptest.NewRequest(http.MethodPost, "/api/send-message", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()
	h.SendMessage(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if len(client.sentBodies) != 0 {
		t.Error("不正なボディが上流へ転送されてはいけない")
	}
}

func TestChatErrorMessage_Empty_ReturnsFallback(t *testing.T) {
	if got := chatErrorMessage(errors.New("")); got != "Unknown error occurred" {
		t.Errorf("chatErrorMessage = %q, want %q", got, "Unknown error occurred")
	}
	if got := chatErrorMessage(errors.New("timeout")); got != "timeout" {
		t.Errorf("chatErrorMessage = %q, want %q", got, "timeout")
	}
}
