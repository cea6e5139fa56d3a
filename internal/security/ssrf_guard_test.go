package security

import (
	"testing"
	"time"
)

// TestValidateURL_AllowedURLs は安全なURLが検証を通過することを検証する。
func TestValidateURL_AllowedURLs(t *testing.T) {
	guard := NewSSRFGuard()

	tests := []struct {
		name string
		url  string
	}{
		{name: "httpsの外部API", url: "https://api.mistral.ai/v1/chat/completions"},
		{name: "httpの外部ホスト", url: "http://example.com/endpoint"},
		{name: "グローバルIPアドレス", url: "https://93.184.216.34/api"},
		{name: "ポート付きURL", url: "https://example.com:443/api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := guard.ValidateURL(tt.url); err != nil {
				t.Errorf("ValidateURL(%q) = %v, want nil", tt.url, err)
			}
		})
	}
}

// TestValidateURL_BlockedURLs は危険なURLが拒否されることを検証する。
func TestValidateURL_BlockedURLs(t *testing.T) {
	guard := NewSSRFGuard()

	tests := []struct {
		name string
		url  string
	}{
		{name: "空文字列", url: ""},
		{name: "スキームなし", url: "example.com/api"},
		{name: "file スキーム", url: "file:///etc/passwd"},
		{name: "ftp スキーム", url: "ftp://example.com/file"},
		{name: "gopher スキーム", url: "gopher://example.com"},
		{name: "localhost", url: "http://localhost:8080/admin"},
		{name: "localhost大文字", url: "http://LOCALHOST/admin"},
		{name: "ループバックIP", url: "http://127.0.0.1/admin"},
		{name: "ループバック範囲内のIP", url: "http://127.0.0.53/admin"},
		{name: "プライベートIP 10系", url: "http://10.0.0.5/internal"},
		{name: "プライベートIP 172系", url: "http://172.16.0.1/internal"},
		{name: "プライベートIP 192系", url: "http://192.168.1.1/router"},
		{name: "クラウドメタデータIP", url: "http://169.254.169.254/latest/meta-data/"},
		{name: "カレントネットワーク", url: "http://0.0.0.0/admin"},
		{name: "IPv6ループバック", url: "http://[::1]/admin"},
		{name: "IPv6リンクローカル", url: "http://[fe80::1]/admin"},
		{name: "IPv6ユニークローカル", url: "http://[fc00::1]/admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := guard.ValidateURL(tt.url); err == nil {
				t.Errorf("ValidateURL(%q) = nil, want error", tt.url)
			}
		})
	}
}

// TestNewSafeClient はSSRF防止付きクライアントの生成を検証する。
func TestNewSafeClient(t *testing.T) {
	guard := NewSSRFGuard()

	client := guard.NewSafeClient(10 * time.Second)
	if client == nil {
		t.Fatal("NewSafeClient returned nil")
	}
	if client.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want %v", client.Timeout, 10*time.Second)
	}
}

// TestSSRFGuardInterface はSSRFGuardServiceインターフェースの適合を検証する。
func TestSSRFGuardInterface(t *testing.T) {
	var _ SSRFGuardService = NewSSRFGuard()
}
