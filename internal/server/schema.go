package server

import (
	"database/sql"
	"fmt"
)

// スキーマ定義。
const schema = `
CREATE TABLE IF NOT EXISTS users (
    -- ユーザーの一意識別子（UUID文字列）
    id TEXT PRIMARY KEY,
    -- ユーザー名。システム全体で一意
    username TEXT NOT NULL UNIQUE,
    -- bcryptでハッシュ化されたパスワード
    password_hash TEXT NOT NULL,
    -- 登録日時
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS posts (
    -- 投稿の一意識別子（UUID文字列）
    id TEXT PRIMARY KEY,
    -- 投稿を所有するユーザーのID
    user_id TEXT NOT NULL,
    -- 投稿タイトル。タイトル検索のキーとなるため一意
    title TEXT NOT NULL UNIQUE,
    -- 説明文
    description TEXT NOT NULL,
    -- 写真への参照
    photo TEXT NOT NULL,
    -- 位置情報
    location TEXT NOT NULL,
    -- 作成日時（サーバー側で割り当て）
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS reviews (
    -- レビューの一意識別子（UUID文字列）
    id TEXT PRIMARY KEY,
    -- レビューしたユーザーのID
    user_id TEXT NOT NULL,
    -- レビュー対象の投稿のID
    post_id TEXT NOT NULL,
    -- 1から5の整数評価
    rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
    -- 任意の本文
    content TEXT NOT NULL DEFAULT '',
    -- 作成日時
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    FOREIGN KEY (user_id) REFERENCES users(id),
    FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE,
    -- 1ユーザー1投稿につきレビューは最大1件
    UNIQUE (user_id, post_id)
);

-- 所有者での投稿検索を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_posts_user_id
    ON posts(user_id);

-- 投稿ごとのレビュー集計を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_reviews_post_id
    ON reviews(post_id);
`

// initSchema はSQLiteデータベースにスキーマを適用する。
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
