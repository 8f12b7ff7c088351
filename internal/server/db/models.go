package db

import "time"

// User はusersテーブルの1行を表す。
type User struct {
	// ID はユーザーの一意識別子（UUID文字列）。
	ID string
	// Username はシステム全体で一意なユーザー名。
	Username string
	// PasswordHash はbcryptでハッシュ化されたパスワード。
	PasswordHash string
	// CreatedAt は登録日時。
	CreatedAt time.Time
}

// Post はpostsテーブルの1行を表す。
type Post struct {
	// ID は投稿の一意識別子（UUID文字列）。
	ID string
	// UserID は投稿を所有するユーザーのID。
	UserID string
	// Title はシステム全体で一意な投稿タイトル。タイトル検索のキーとして使用する。
	Title string
	// Description は投稿の説明文。
	Description string
	// Photo は写真への参照。
	Photo string
	// Location は投稿に紐づく位置情報。
	Location string
	// CreatedAt はサーバーが割り当てた作成日時。
	CreatedAt time.Time
}

// Review はreviewsテーブルの1行を表す。
// (UserID, PostID) の組につき最大1行という一意制約を持つ。
type Review struct {
	// ID はレビューの一意識別子（UUID文字列）。
	ID string
	// UserID はレビューしたユーザーのID。
	UserID string
	// PostID はレビュー対象の投稿のID。
	PostID string
	// Rating は1から5の整数評価。
	Rating int64
	// Content は任意の本文。
	Content string
	// CreatedAt は作成日時。
	CreatedAt time.Time
}
