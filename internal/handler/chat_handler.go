package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/brunomgama/utility-tool-sub002/internal/chat"
)

// チャット中継リクエストボディの読み取り上限（1MB）
const maxChatRequestSize = 1 << 20

// ChatClientInterface はチャットハンドラーが必要とするクライアントインターフェース。
type ChatClientInterface interface {
	Configured() bool
	Send(ctx context.Context, body []byte) (json.RawMessage, error)
}

// ChatHandler はチャット中継のHTTPハンドラー。
// 上流の応答を統一エンベロープ（success/data/error）で返す。
type ChatHandler struct {
	client ChatClientInterface
}

// NewChatHandler はChatHandlerを生成する。
func NewChatHandler(client ChatClientInterface) *ChatHandler {
	return &ChatHandler{client: client}
}

// chatEnvelope はチャット中継のレスポンスエンベロープ。
type chatEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// SendMessage はチャットメッセージを上流APIへ中継する。
//
// リクエストボディは改変せずに転送される。応答は以下のいずれか:
//   - 成功: 200 {success:true, data:<上流の応答>}
//   - 上流エラー: 上流と同じステータスで {success:false, error:"API error (<status>): <body>"}
//   - 認証情報未設定・その他の失敗: 500 {success:false, error:<メッセージ>}
//
// POST /api/send-message
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	// 認証情報が未設定の場合は起動ではなくリクエスト時に失敗する
	if !h.client.Configured() {
		writeChatEnvelope(w, http.StatusInternalServerError, chatEnvelope{
			Success: false,
			Error:   "API credentials are not configured",
		})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxChatRequestSize))
	if err != nil {
		writeChatEnvelope(w, http.StatusInternalServerError, chatEnvelope{
			Success: false,
			Error:   chatErrorMessage(err),
		})
		return
	}

	if !json.Valid(body) {
		writeChatEnvelope(w, http.StatusInternalServerError, chatEnvelope{
			Success: false,
			Error:   "request body is not valid JSON",
		})
		return
	}

	data, err := h.client.Send(r.Context(), body)
	if err != nil {
		var upstreamErr *chat.UpstreamError
		if errors.As(err, &upstreamErr) {
			// 上流のステータスを鏡写しにする
			writeChatEnvelope(w, upstreamErr.StatusCode, chatEnvelope{
				Success: false,
				Error:   upstreamErr.Error(),
			})
			return
		}

		slog.Error("チャット中継に失敗しました", slog.String("error", err.Error()))
		writeChatEnvelope(w, http.StatusInternalServerError, chatEnvelope{
			Success: false,
			Error:   chatErrorMessage(err),
		})
		return
	}

	writeChatEnvelope(w, http.StatusOK, chatEnvelope{
		Success: true,
		Data:    data,
	})
}

// writeChatEnvelope はエンベロープ形式のレスポンスを書き込む。
func writeChatEnvelope(w http.ResponseWriter, statusCode int, envelope chatEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope)
}

// chatErrorMessage はエラーからエンベロープ用メッセージを取り出す。
func chatErrorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "Unknown error occurred"
	}
	return err.Error()
}
