package server

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	serverdb "github.com/nao1215/spotshare/internal/server/db"
	"github.com/nao1215/spotshare/pkg/middleware"
)

// createPostRequest は投稿作成リクエストのJSON構造。
// すべてのフィールドが必須で、空文字は許可しない。
type createPostRequest struct {
	// Title は投稿タイトル。システム全体で一意。
	Title string `json:"title" binding:"required"`
	// Description は説明文。
	Description string `json:"description" binding:"required"`
	// Photo は写真への参照。
	Photo string `json:"photo" binding:"required"`
	// Location は位置情報。
	Location string `json:"location" binding:"required"`
}

// postResponse は投稿のJSONレスポンス構造。
type postResponse struct {
	// ID は投稿の一意識別子。
	ID string `json:"id"`
	// UserID は投稿を所有するユーザーのID。
	UserID string `json:"user_id"`
	// Username は所有者のユーザー名。
	Username string `json:"username"`
	// Title は投稿タイトル。
	Title string `json:"title"`
	// Description は説明文。
	Description string `json:"description"`
	// Photo は写真への参照。
	Photo string `json:"photo"`
	// Location は位置情報。
	Location string `json:"location"`
	// CreatedAt は作成日時。
	CreatedAt string `json:"created_at"`
	// AverageRating は評価の算術平均。レビューが無い場合は0。
	AverageRating float64 `json:"average_rating"`
	// ReviewCount はレビュー件数。
	ReviewCount int64 `json:"review_count"`
}

// toPostResponse はDB行をJSONレスポンスに変換する。
func toPostResponse(p serverdb.PostWithStatsRow) postResponse {
	return postResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		Username:      p.Username,
		Title:         p.Title,
		Description:   p.Description,
		Photo:         p.Photo,
		Location:      p.Location,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
		AverageRating: p.AverageRating,
		ReviewCount:   p.ReviewCount,
	}
}

// handleCreatePost は投稿作成を処理するハンドラを返す。
// 所有者はトークンから解決し、クライアントが指定することはできない。
// 作成日時もサーバー側で割り当てる。
func (s *Server) handleCreatePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		var req createPostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "必須フィールドが不足しています"})
			return
		}

		// トークンは有効でもユーザー行が消えている可能性がある
		if !s.requireUserExists(c, userID) {
			return
		}

		// タイトルは検索キーとなるため重複を拒否する。UNIQUE制約が最終的な防衛線
		_, err := s.queries.GetPostByTitle(c.Request.Context(), req.Title)
		if err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "このタイトルは既に使用されています"})
			return
		}
		if !errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "投稿の確認に失敗しました"})
			log.Printf("投稿取得エラー: %v", err)
			return
		}

		postID := uuid.New().String()
		if err := s.queries.CreatePost(c.Request.Context(), serverdb.CreatePostParams{
			ID:          postID,
			UserID:      userID,
			Title:       req.Title,
			Description: req.Description,
			Photo:       req.Photo,
			Location:    req.Location,
		}); err != nil {
			if isUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "このタイトルは既に使用されています"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "投稿の作成に失敗しました"})
			log.Printf("投稿作成エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "投稿を作成しました",
			"post_id": postID,
		})
	}
}

// handleListPosts は全投稿の一覧取得を処理するハンドラを返す。
// 各投稿には所有者のユーザー名とレビュー統計が付加される。
func (s *Server) handleListPosts() gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, err := s.queries.ListPostsWithStats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "投稿一覧の取得に失敗しました"})
			log.Printf("投稿一覧取得エラー: %v", err)
			return
		}
		if len(posts) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "投稿が見つかりません"})
			return
		}

		responses := make([]postResponse, 0, len(posts))
		for _, p := range posts {
			responses = append(responses, toPostResponse(p))
		}

		c.JSON(http.StatusOK, responses)
	}
}

// postDetailResponse はタイトル検索のJSONレスポンス構造。
// 投稿本体にレビュー一覧と統計を付加する。
type postDetailResponse struct {
	postResponse
	// Reviews はレビュー一覧と統計。
	Reviews reviewStatsResponse `json:"reviews"`
}

// handleGetPostByTitle はタイトルによる投稿取得を処理するハンドラを返す。
func (s *Server) handleGetPostByTitle() gin.HandlerFunc {
	return func(c *gin.Context) {
		title := c.Param("title")

		post, err := s.queries.GetPostByTitle(c.Request.Context(), title)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "投稿が見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "投稿の取得に失敗しました"})
			log.Printf("投稿取得エラー: %v", err)
			return
		}

		stats, err := s.reviewStats(c, post.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "レビューの取得に失敗しました"})
			log.Printf("レビュー取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, postDetailResponse{
			postResponse: toPostResponse(serverdb.PostWithStatsRow{
				Post:          post.Post,
				Username:      post.Username,
				AverageRating: stats.Average,
				ReviewCount:   stats.Count,
			}),
			Reviews: stats,
		})
	}
}

// handleDeletePost は投稿削除を処理するハンドラを返す。
// 削除できるのは投稿の所有者のみ。所有者以外は403を返し、投稿は残る。
func (s *Server) handleDeletePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		postID := c.Param("id")
		post, err := s.queries.GetPostByID(c.Request.Context(), postID)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "投稿が見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "投稿の取得に失敗しました"})
			log.Printf("投稿取得エラー: %v", err)
			return
		}

		if post.UserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "この投稿を削除する権限がありません"})
			return
		}

		if err := s.queries.DeletePost(c.Request.Context(), postID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "投稿の削除に失敗しました"})
			log.Printf("投稿削除エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "投稿を削除しました"})
	}
}
