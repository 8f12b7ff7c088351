package db

import "context"

const createPost = `
INSERT INTO posts (id, user_id, title, description, photo, location)
VALUES (?, ?, ?, ?, ?, ?)
`

// CreatePostParams はCreatePostのパラメータ。
type CreatePostParams struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Photo       string
	Location    string
}

// CreatePost は新しい投稿を作成する。作成日時はDB側で割り当てる。
// タイトルが既に存在する場合はUNIQUE制約違反エラーを返す。
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) error {
	_, err := q.db.ExecContext(ctx, createPost,
		arg.ID, arg.UserID, arg.Title, arg.Description, arg.Photo, arg.Location)
	return err
}

const getPostByID = `
SELECT id, user_id, title, description, photo, location, created_at
FROM posts
WHERE id = ?
`

// GetPostByID はIDで投稿を1件取得する。
func (q *Queries) GetPostByID(ctx context.Context, id string) (Post, error) {
	row := q.db.QueryRowContext(ctx, getPostByID, id)
	var p Post
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Photo, &p.Location, &p.CreatedAt)
	return p, err
}

const getPostByTitle = `
SELECT p.id, p.user_id, p.title, p.description, p.photo, p.location, p.created_at, u.username
FROM posts p
JOIN users u ON u.id = p.user_id
WHERE p.title = ?
`

// GetPostByTitleRow はGetPostByTitleの結果行。
type GetPostByTitleRow struct {
	Post
	// Username は投稿を所有するユーザーのユーザー名。
	Username string
}

// GetPostByTitle はタイトルで投稿を所有者のユーザー名付きで1件取得する。
// タイトルはUNIQUE制約により検索キーとして機能する。
func (q *Queries) GetPostByTitle(ctx context.Context, title string) (GetPostByTitleRow, error) {
	row := q.db.QueryRowContext(ctx, getPostByTitle, title)
	var r GetPostByTitleRow
	err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.Description, &r.Photo, &r.Location, &r.CreatedAt, &r.Username)
	return r, err
}

const listPostsWithStats = `
SELECT p.id, p.user_id, p.title, p.description, p.photo, p.location, p.created_at,
       u.username,
       COALESCE(AVG(r.rating), 0) AS average_rating,
       COUNT(r.id) AS review_count
FROM posts p
JOIN users u ON u.id = p.user_id
LEFT JOIN reviews r ON r.post_id = p.id
GROUP BY p.id
ORDER BY p.created_at DESC, p.id
`

// PostWithStatsRow は投稿に所有者名とレビュー統計を付加した結果行。
type PostWithStatsRow struct {
	Post
	// Username は投稿を所有するユーザーのユーザー名。
	Username string
	// AverageRating は評価の算術平均。レビューが無い場合はちょうど0。
	AverageRating float64
	// ReviewCount はレビュー件数。
	ReviewCount int64
}

// ListPostsWithStats は全投稿を所有者名とレビュー統計付きで取得する。
// 投稿が無い場合は空のスライスを返し、エラーにはしない。
func (q *Queries) ListPostsWithStats(ctx context.Context) ([]PostWithStatsRow, error) {
	rows, err := q.db.QueryContext(ctx, listPostsWithStats)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []PostWithStatsRow{}
	for rows.Next() {
		var r PostWithStatsRow
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.Title, &r.Description, &r.Photo, &r.Location, &r.CreatedAt,
			&r.Username, &r.AverageRating, &r.ReviewCount,
		); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const listPostsWithStatsByUserID = `
SELECT p.id, p.user_id, p.title, p.description, p.photo, p.location, p.created_at,
       u.username,
       COALESCE(AVG(r.rating), 0) AS average_rating,
       COUNT(r.id) AS review_count
FROM posts p
JOIN users u ON u.id = p.user_id
LEFT JOIN reviews r ON r.post_id = p.id
WHERE p.user_id = ?
GROUP BY p.id
ORDER BY p.created_at DESC, p.id
`

// ListPostsWithStatsByUserID は指定ユーザーの投稿をレビュー統計付きで取得する。
// 投稿が無い場合は空のスライスを返し、エラーにはしない。
func (q *Queries) ListPostsWithStatsByUserID(ctx context.Context, userID string) ([]PostWithStatsRow, error) {
	rows, err := q.db.QueryContext(ctx, listPostsWithStatsByUserID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []PostWithStatsRow{}
	for rows.Next() {
		var r PostWithStatsRow
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.Title, &r.Description, &r.Photo, &r.Location, &r.CreatedAt,
			&r.Username, &r.AverageRating, &r.ReviewCount,
		); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const deletePost = `
DELETE FROM posts
WHERE id = ?
`

// DeletePost はIDで投稿を削除する。紐づくレビューは外部キーのCASCADEで削除される。
// 所有者の確認は呼び出し側の責務とする。
func (q *Queries) DeletePost(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deletePost, id)
	return err
}
