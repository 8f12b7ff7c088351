package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	serverdb "github.com/nao1215/spotshare/internal/server/db"
	"github.com/nao1215/spotshare/pkg/middleware"
)

// upsertReviewRequest はレビューupsertリクエストのJSON構造。
type upsertReviewRequest struct {
	// Rating は1から5の整数評価。小数はJSONデコードの時点で拒否される。
	Rating int64 `json:"rating" binding:"required,min=1,max=5"`
	// Content は任意の本文。
	Content string `json:"content"`
}

// reviewResponse はレビューのJSONレスポンス構造。
type reviewResponse struct {
	// ID はレビューの一意識別子。
	ID string `json:"id"`
	// UserID はレビューしたユーザーのID。
	UserID string `json:"user_id"`
	// Username はレビューしたユーザーのユーザー名。
	Username string `json:"username"`
	// Rating は1から5の整数評価。
	Rating int64 `json:"rating"`
	// Content は本文。
	Content string `json:"content"`
	// CreatedAt は作成日時。
	CreatedAt string `json:"created_at"`
}

// reviewStatsResponse はレビュー一覧と統計のJSONレスポンス構造。
type reviewStatsResponse struct {
	// Ratings はレビュアー名付きのレビュー一覧。
	Ratings []reviewResponse `json:"ratings"`
	// Average は評価の算術平均。レビューが無い場合はちょうど0。
	Average float64 `json:"average"`
	// Count はレビュー件数。
	Count int64 `json:"count"`
}

// handleUpsertReview はレビューの作成・更新を処理するハンドラを返す。
// 同じユーザーが同じ投稿を再評価した場合、新しい行は作らず既存行を書き換える。
func (s *Server) handleUpsertReview() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		var req upsertReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "評価は1から5の整数で指定してください"})
			return
		}

		postID := c.Param("id")
		if _, err := s.queries.GetPostByID(c.Request.Context(), postID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "投稿が見つかりません"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "投稿の取得に失敗しました"})
			log.Printf("投稿取得エラー: %v", err)
			return
		}

		if err := s.upsertReview(c.Request.Context(), userID, postID, req.Rating, req.Content); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "レビューの保存に失敗しました"})
			log.Printf("レビューupsertエラー: %v", err)
			return
		}

		stats, err := s.reviewStats(c, postID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "レビューの取得に失敗しました"})
			log.Printf("レビュー取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "レビューを保存しました",
			"reviews": stats,
		})
	}
}

// upsertReview は (userID, postID) のレビューを原子的に作成または更新する。
// 存在確認と書き込みを1つのトランザクションにまとめ、並行する同一ペアの
// upsertが最終的に1行へ収束するようにする。競合でUNIQUE制約違反が起きた
// 場合は新しいトランザクションで1回だけやり直す（2回目は必ず更新経路に入る）。
func (s *Server) upsertReview(ctx context.Context, userID, postID string, rating int64, content string) error {
	err := s.tryUpsertReview(ctx, userID, postID, rating, content)
	if isUniqueViolation(err) {
		err = s.tryUpsertReview(ctx, userID, postID, rating, content)
	}
	return err
}

// tryUpsertReview はupsertの1回分の試行をトランザクション内で実行する。
func (s *Server) tryUpsertReview(ctx context.Context, userID, postID string, rating int64, content string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗: %w", err)
	}
	// コミット済みの場合のロールバックは無害
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	existing, err := qtx.GetReviewByUserAndPost(ctx, serverdb.GetReviewByUserAndPostParams{
		UserID: userID,
		PostID: postID,
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if err := qtx.CreateReview(ctx, serverdb.CreateReviewParams{
			ID:      uuid.New().String(),
			UserID:  userID,
			PostID:  postID,
			Rating:  rating,
			Content: content,
		}); err != nil {
			return fmt.Errorf("レビューの作成に失敗: %w", err)
		}
	case err != nil:
		return fmt.Errorf("既存レビューの取得に失敗: %w", err)
	default:
		if err := qtx.UpdateReview(ctx, serverdb.UpdateReviewParams{
			Rating:  rating,
			Content: content,
			ID:      existing.ID,
		}); err != nil {
			return fmt.Errorf("レビューの更新に失敗: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗: %w", err)
	}
	return nil
}

// reviewStats は指定投稿のレビュー一覧と評価統計を取得する。
func (s *Server) reviewStats(c *gin.Context, postID string) (reviewStatsResponse, error) {
	reviews, err := s.queries.ListReviewsByPostID(c.Request.Context(), postID)
	if err != nil {
		return reviewStatsResponse{}, fmt.Errorf("レビュー一覧の取得に失敗: %w", err)
	}

	stats, err := s.queries.GetReviewStats(c.Request.Context(), postID)
	if err != nil {
		return reviewStatsResponse{}, fmt.Errorf("レビュー統計の取得に失敗: %w", err)
	}

	ratings := make([]reviewResponse, 0, len(reviews))
	for _, r := range reviews {
		ratings = append(ratings, reviewResponse{
			ID:        r.ID,
			UserID:    r.UserID,
			Username:  r.Username,
			Rating:    r.Rating,
			Content:   r.Content,
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return reviewStatsResponse{
		Ratings: ratings,
		Average: stats.AverageRating,
		Count:   stats.ReviewCount,
	}, nil
}
