package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// IdentityClaims はIDプロバイダーから取得したユーザー情報を表す。
type IdentityClaims struct {
	Subject string
	Email   string
	Name    string
}

// IdentityProvider はIDプロバイダーとの認証フローのインターフェース。
// テストではモック実装に差し替える。
type IdentityProvider interface {
	// AuthCodeURL は認可エンドポイントのURLを生成する。
	AuthCodeURL(state string) string
	// Exchange は認可コードをIDトークンに交換し、検証済みクレームを返す。
	Exchange(ctx context.Context, code string) (*IdentityClaims, error)
}

// OIDCConfig はOIDCプロバイダーの設定。
type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OIDCProvider はOpenID Connectによる認証を提供する。
// IDトークンの署名検証はissuerのディスカバリ情報に基づいて行う。
type OIDCProvider struct {
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewOIDCProvider はissuerのディスカバリエンドポイントからプロバイダー情報を
// 取得してOIDCProviderを生成する。
func NewOIDCProvider(ctx context.Context, config OIDCConfig) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, config.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover oidc provider: %w", err)
	}

	return &OIDCProvider{
		oauth: oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: config.ClientID}),
	}, nil
}

// AuthCodeURL は認可エンドポイントのURLを生成する。
func (p *OIDCProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange は認可コードをトークンに交換し、IDトークンを検証して
// subject・emailクレームを取り出す。
func (p *OIDCProvider) Exchange(ctx context.Context, code string) (*IdentityClaims, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("id_token missing in token response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify id token: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse id token claims: %w", err)
	}

	if idToken.Subject == "" {
		return nil, fmt.Errorf("empty sub in id token")
	}

	return &IdentityClaims{
		Subject: idToken.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}

// compile-time interface check
var _ IdentityProvider = (*OIDCProvider)(nil)
