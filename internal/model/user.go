// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// IDプロバイダーが発行するsubject識別子で参照される。
// オンボーディング完了時に作成され、以後ガードの存在チェック対象となる。
type User struct {
	ID        string
	Subject   string // IDプロバイダーのsubクレーム
	Email     string
	Name      string
	Country   string // ISO 3166-1 alpha-2 国コード
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session はユーザーのログインセッションを表す。
// IDプロバイダーでの認証成功時に発行され、以後このシステムからは読み取り専用。
type Session struct {
	ID        string
	Subject   string
	Email     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
