package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/spotshare/pkg/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupAuthRouter は認証ゲートを適用した保護ルートを1つ持つルーターを構築する。
func setupAuthRouter(svc *token.Service) *gin.Engine {
	router := gin.New()
	protected := router.Group("/protected")
	protected.Use(Auth(svc))
	protected.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	return router
}

func TestAuth(t *testing.T) {
	t.Run("有効なトークンで保護ルートにアクセスできユーザーIDが解決される", func(t *testing.T) {
		svc := token.New(token.Config{Secret: "test-secret"})
		router := setupAuthRouter(svc)

		tokenString, err := svc.Issue("user-001")
		if err != nil {
			t.Fatalf("トークン発行に失敗: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: tokenString})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if want := `{"user_id":"user-001"}`; w.Body.String() != want {
			t.Errorf("レスポンス = %s, want %s", w.Body.String(), want)
		}
	})

	t.Run("Cookieが無い場合は401でハンドラは呼ばれない", func(t *testing.T) {
		svc := token.New(token.Config{Secret: "test-secret"})
		router := setupAuthRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("期限切れトークンは401になる", func(t *testing.T) {
		svc := token.New(token.Config{Secret: "test-secret"})
		expiredSvc := token.New(token.Config{Secret: "test-secret", TTL: -1 * time.Second})
		router := setupAuthRouter(svc)

		tokenString, err := expiredSvc.Issue("user-001")
		if err != nil {
			t.Fatalf("トークン発行に失敗: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: tokenString})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("異なる鍵で署名されたトークンは401になる", func(t *testing.T) {
		svc := token.New(token.Config{Secret: "test-secret"})
		otherSvc := token.New(token.Config{Secret: "other-secret"})
		router := setupAuthRouter(svc)

		tokenString, err := otherSvc.Issue("user-001")
		if err != nil {
			t.Fatalf("トークン発行に失敗: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: tokenString})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("同じルーター内の公開ルートは認証なしでアクセスできる", func(t *testing.T) {
		svc := token.New(token.Config{Secret: "test-secret"})
		router := setupAuthRouter(svc)
		router.GET("/public", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
	})
}

func TestGetUserID(t *testing.T) {
	t.Run("user_idが未設定の場合は空文字を返す", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		if got := GetUserID(c); got != "" {
			t.Errorf("GetUserID = %q, want empty string", got)
		}
	})
}
