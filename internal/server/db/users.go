package db

import "context"

const createUser = `
INSERT INTO users (id, username, password_hash)
VALUES (?, ?, ?)
`

// CreateUserParams はCreateUserのパラメータ。
type CreateUserParams struct {
	ID           string
	Username     string
	PasswordHash string
}

// CreateUser は新しいユーザーを登録する。
// ユーザー名が既に存在する場合はUNIQUE制約違反エラーを返す。
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, createUser, arg.ID, arg.Username, arg.PasswordHash)
	return err
}

const getUserByID = `
SELECT id, username, password_hash, created_at
FROM users
WHERE id = ?
`

// GetUserByID はIDでユーザーを1件取得する。
func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

const getUserByUsername = `
SELECT id, username, password_hash, created_at
FROM users
WHERE username = ?
`

// GetUserByUsername はユーザー名でユーザーを1件取得する。
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByUsername, username)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, err
}
