package server

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	serverdb "github.com/nao1215/spotshare/internal/server/db"
	"github.com/nao1215/spotshare/pkg/middleware"
	"github.com/nao1215/spotshare/pkg/password"
)

// registerRequest はユーザー登録リクエストのJSON構造。
type registerRequest struct {
	// Username は登録するユーザー名。
	Username string `json:"username" binding:"required"`
	// Password は平文パスワード。ハッシュ化して保存する。
	Password string `json:"password" binding:"required"`
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	// Username はユーザー名。
	Username string `json:"username" binding:"required"`
	// Password は平文パスワード。
	Password string `json:"password" binding:"required"`
}

// handleRegister はユーザー登録を処理するハンドラを返す。
// 登録に成功するとセッショントークンを発行し、Cookieにも設定する。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ユーザー名またはパスワードがありません"})
			return
		}

		// ユーザー名の重複を事前に確認する。UNIQUE制約が最終的な防衛線となる
		_, err := s.queries.GetUserByUsername(c.Request.Context(), req.Username)
		if err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "このユーザー名は既に使用されています"})
			return
		}
		if !errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの確認に失敗しました"})
			log.Printf("ユーザー取得エラー: %v", err)
			return
		}

		hashed, err := password.Hash(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの作成に失敗しました"})
			log.Printf("パスワードハッシュ化エラー: %v", err)
			return
		}

		userID := uuid.New().String()
		if err := s.queries.CreateUser(c.Request.Context(), serverdb.CreateUserParams{
			ID:           userID,
			Username:     req.Username,
			PasswordHash: hashed,
		}); err != nil {
			if isUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "このユーザー名は既に使用されています"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの作成に失敗しました"})
			log.Printf("ユーザー作成エラー: %v", err)
			return
		}

		tokenString, err := s.tokens.Issue(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの発行に失敗しました"})
			log.Printf("トークン発行エラー: %v", err)
			return
		}
		s.setSessionCookie(c, tokenString)

		c.JSON(http.StatusCreated, gin.H{
			"message": "ユーザーを登録しました",
			"user_id": userID,
			"token":   tokenString,
		})
	}
}

// handleLogin はログインを処理するハンドラを返す。
// 未知のユーザー名とパスワード不一致は同一のメッセージで401を返す
// （ユーザー名の存在を推測させない）。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ユーザー名またはパスワードがありません"})
			return
		}

		user, err := s.queries.GetUserByUsername(c.Request.Context(), req.Username)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザー名またはパスワードが正しくありません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの取得に失敗しました"})
			log.Printf("ユーザー取得エラー: %v", err)
			return
		}

		if err := password.Verify(req.Password, user.PasswordHash); err != nil {
			if errors.Is(err, password.ErrCorruptHash) {
				// 保存データの破損は認証失敗と区別してログに残す
				c.JSON(http.StatusInternalServerError, gin.H{"error": "認証処理に失敗しました"})
				log.Printf("ユーザー %s のパスワードハッシュが破損: %v", user.ID, err)
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザー名またはパスワードが正しくありません"})
			return
		}

		tokenString, err := s.tokens.Issue(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの発行に失敗しました"})
			log.Printf("トークン発行エラー: %v", err)
			return
		}
		s.setSessionCookie(c, tokenString)

		c.JSON(http.StatusOK, gin.H{
			"message": "ログインしました",
			"token":   tokenString,
		})
	}
}

// handleLogout はログアウトを処理するハンドラを返す。
// トークンは自己完結型で失効リストを持たないため、Cookieの削除のみを行う。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.clearSessionCookie(c)
		c.JSON(http.StatusOK, gin.H{"message": "ログアウトしました"})
	}
}

// handleStatus はログイン状態の確認を処理するハンドラを返す。
// トークンが無い・不正・期限切れのいずれでもエラーにはせず、
// logged_in: false を返す。
func (s *Server) handleStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(middleware.CookieName)
		if err != nil || tokenString == "" {
			c.JSON(http.StatusOK, gin.H{"logged_in": false})
			return
		}

		userID, err := s.tokens.Validate(tokenString)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"logged_in": false})
			return
		}

		c.JSON(http.StatusOK, gin.H{"logged_in": true, "user_id": userID})
	}
}

// profileResponse はプロフィール取得のJSONレスポンス構造。
type profileResponse struct {
	// ID はユーザーの一意識別子。
	ID string `json:"id"`
	// Username はユーザー名。
	Username string `json:"username"`
	// Posts はユーザーが所有する投稿の一覧。
	Posts []postResponse `json:"posts"`
}

// handleProfile は認証済みユーザーのプロフィール取得を処理するハンドラを返す。
// ユーザー本体と、そのユーザーが所有する投稿の一覧（レビュー統計付き）を返す。
func (s *Server) handleProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		user, err := s.queries.GetUserByID(c.Request.Context(), userID)
		if errors.Is(err, sql.ErrNoRows) {
			// トークンは有効だがユーザーが存在しない
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの取得に失敗しました"})
			log.Printf("ユーザー取得エラー: %v", err)
			return
		}

		posts, err := s.queries.ListPostsWithStatsByUserID(c.Request.Context(), userID)
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

		c.JSON(http.StatusOK, profileResponse{
			ID:       user.ID,
			Username: user.Username,
			Posts:    responses,
		})
	}
}

// requireUserExists は認証済みユーザーがDBに存在することを確認する。
// 存在しない場合はfalseを返し、レスポンスは書き込み済みとなる。
func (s *Server) requireUserExists(c *gin.Context, userID string) bool {
	_, err := s.queries.GetUserByID(c.Request.Context(), userID)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
		return false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの確認に失敗しました"})
		log.Printf("ユーザー取得エラー: %v", err)
		return false
	}
	return true
}
