package db

import "context"

const createReview = `
INSERT INTO reviews (id, user_id, post_id, rating, content)
VALUES (?, ?, ?, ?, ?)
`

// CreateReviewParams はCreateReviewのパラメータ。
type CreateReviewParams struct {
	ID      string
	UserID  string
	PostID  string
	Rating  int64
	Content string
}

// CreateReview は新しいレビューを作成する。
// 同じ (UserID, PostID) の組が既に存在する場合はUNIQUE制約違反エラーを返す。
func (q *Queries) CreateReview(ctx context.Context, arg CreateReviewParams) error {
	_, err := q.db.ExecContext(ctx, createReview,
		arg.ID, arg.UserID, arg.PostID, arg.Rating, arg.Content)
	return err
}

const updateReview = `
UPDATE reviews
SET rating = ?, content = ?
WHERE id = ?
`

// UpdateReviewParams はUpdateReviewのパラメータ。
type UpdateReviewParams struct {
	Rating  int64
	Content string
	ID      string
}

// UpdateReview は既存レビューの評価と本文を書き換える。
func (q *Queries) UpdateReview(ctx context.Context, arg UpdateReviewParams) error {
	_, err := q.db.ExecContext(ctx, updateReview, arg.Rating, arg.Content, arg.ID)
	return err
}

const getReviewByUserAndPost = `
SELECT id, user_id, post_id, rating, content, created_at
FROM reviews
WHERE user_id = ? AND post_id = ?
`

// GetReviewByUserAndPostParams はGetReviewByUserAndPostのパラメータ。
type GetReviewByUserAndPostParams struct {
	UserID string
	PostID string
}

// GetReviewByUserAndPost は指定ユーザーの指定投稿に対するレビューを取得する。
// 一意制約により結果は最大1件となる。
func (q *Queries) GetReviewByUserAndPost(ctx context.Context, arg GetReviewByUserAndPostParams) (Review, error) {
	row := q.db.QueryRowContext(ctx, getReviewByUserAndPost, arg.UserID, arg.PostID)
	var r Review
	err := row.Scan(&r.ID, &r.UserID, &r.PostID, &r.Rating, &r.Content, &r.CreatedAt)
	return r, err
}

const listReviewsByPostID = `
SELECT r.id, r.user_id, r.post_id, r.rating, r.content, r.created_at, u.username
FROM reviews r
JOIN users u ON u.id = r.user_id
WHERE r.post_id = ?
ORDER BY r.created_at, r.id
`

// ReviewWithReviewerRow はレビューにレビュアーのユーザー名を付加した結果行。
type ReviewWithReviewerRow struct {
	Review
	// Username はレビューしたユーザーのユーザー名。
	Username string
}

// ListReviewsByPostID は指定投稿のレビューをレビュアー名付きで取得する。
// レビューが無い場合は空のスライスを返し、エラーにはしない。
func (q *Queries) ListReviewsByPostID(ctx context.Context, postID string) ([]ReviewWithReviewerRow, error) {
	rows, err := q.db.QueryContext(ctx, listReviewsByPostID, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []ReviewWithReviewerRow{}
	for rows.Next() {
		var r ReviewWithReviewerRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.PostID, &r.Rating, &r.Content, &r.CreatedAt, &r.Username); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getReviewStats = `
SELECT COALESCE(AVG(rating), 0) AS average_rating, COUNT(id) AS review_count
FROM reviews
WHERE post_id = ?
`

// ReviewStatsRow はGetReviewStatsの結果行。
type ReviewStatsRow struct {
	// AverageRating は評価の算術平均。レビューが無い場合はちょうど0。
	AverageRating float64
	// ReviewCount はレビュー件数。
	ReviewCount int64
}

// GetReviewStats は指定投稿のレビュー統計を取得する。
// レビューが0件の場合も平均0・件数0の行を返し、エラーにはしない。
func (q *Queries) GetReviewStats(ctx context.Context, postID string) (ReviewStatsRow, error) {
	row := q.db.QueryRowContext(ctx, getReviewStats, postID)
	var r ReviewStatsRow
	err := row.Scan(&r.AverageRating, &r.ReviewCount)
	return r, err
}
