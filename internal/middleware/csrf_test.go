package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func csrfHandler() http.Handler {
	mw := NewCSRFMiddleware(CSRFConfig{})
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCSRFMiddleware_Get_IssuesTokenCookie(t *testing.T) {
	handler := csrfHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var issued *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "csrf_token" {
			issued = c
		}
	}
	if issued == nil {
		t.Fatal("csrf_token Cookieが発行されるべき")
	}
	if issued.Value == "" {
		t.Error("トークン値が空であってはいけない")
	}
	if issued.HttpOnly {
		t.Error("フロントエンドが読み取れるようHttpOnlyであってはいけない")
	}
}

func TestCSRFMiddleware_Post_RequiresMatchingToken(t *testing.T) {
	handler := csrfHandler()

	tests := []struct {
		name       string
		cookie     string
		header     string
		wantStatus int
	}{
		{name: "一致するトークン", cookie: "token-abc", header: "token-abc", wantStatus: http.StatusOK},
		{name: "Cookieなし", cookie: "", header: "token-abc", wantStatus: http.StatusForbidden},
		{name: "ヘッダーなし", cookie: "token-abc", header: "", wantStatus: http.StatusForbidden},
		{name: "不一致", cookie: "token-abc", header: "token-xyz", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/projects", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "csrf_token", Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("X-CSRF-Token", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
