package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// setupCORSRouter はCORSミドルウェアとGET/POSTハンドラーを持つルーターを構築する。
// handlerCalled でハンドラーまで到達したかを追跡できる。
func setupCORSRouter(allowedOrigins []string, handlerCalled *bool) *gin.Engine {
	router := gin.New()
	router.Use(CORS(allowedOrigins))
	handler := func(c *gin.Context) {
		if handlerCalled != nil {
			*handlerCalled = true
		}
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	}
	router.GET("/resource", handler)
	router.POST("/resource", handler)
	return router
}

// doCORSRequest は指定メソッド・Originヘッダーでリクエストを実行する。
func doCORSRequest(router *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/resource", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	allowed := []string{"http://localhost:3000", "https://spotshare.example.com"}

	t.Run("オリジンの照合結果に応じてヘッダーの有無が切り替わる", func(t *testing.T) {
		tests := []struct {
			name       string
			origin     string
			wantHeader bool
		}{
			{name: "許可リスト先頭のオリジン", origin: "http://localhost:3000", wantHeader: true},
			{name: "許可リスト2番目のオリジン", origin: "https://spotshare.example.com", wantHeader: true},
			{name: "未許可のオリジン", origin: "http://evil.example.com", wantHeader: false},
			{name: "スキーム違いは別オリジン", origin: "https://localhost:3000", wantHeader: false},
			{name: "Originヘッダー無し", origin: "", wantHeader: false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				router := setupCORSRouter(allowed, nil)
				w := doCORSRequest(router, http.MethodGet, tt.origin)

				if w.Code != http.StatusOK {
					t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
				}
				got := w.Header().Get("Access-Control-Allow-Origin")
				if tt.wantHeader && got != tt.origin {
					t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.origin)
				}
				if !tt.wantHeader && got != "" {
					t.Errorf("Access-Control-Allow-Origin = %q, want 空", got)
				}
			})
		}
	})

	t.Run("許可オリジンにはAllow-Credentialsが付きワイルドカードは使われない", func(t *testing.T) {
		router := setupCORSRouter(allowed, nil)
		w := doCORSRequest(router, http.MethodGet, "http://localhost:3000")

		// Cookieでセッショントークンを運ぶので資格情報の送信を許可する。
		// その場合 Allow-Origin は "*" にできず、オリジンをそのまま返す必要がある
		if got := w.Header().Get("Access-Control-Allow-Origin"); got == "*" {
			t.Error("Access-Control-Allow-Origin にワイルドカードが使われている")
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Access-Control-Allow-Credentials = %q, want true", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
			t.Error("Access-Control-Allow-Methods が設定されていない")
		}
	})

	t.Run("未許可オリジンにはAllow-Credentialsも付かない", func(t *testing.T) {
		router := setupCORSRouter(allowed, nil)
		w := doCORSRequest(router, http.MethodGet, "http://evil.example.com")

		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
			t.Errorf("Access-Control-Allow-Credentials = %q, want 空", got)
		}
	})

	t.Run("プリフライトは204で中断されハンドラーまで到達しない", func(t *testing.T) {
		handlerCalled := false
		router := setupCORSRouter(allowed, &handlerCalled)

		w := doCORSRequest(router, http.MethodOptions, "http://localhost:3000")

		if w.Code != http.StatusNoContent {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusNoContent)
		}
		if handlerCalled {
			t.Error("プリフライトでハンドラーが実行された")
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Access-Control-Allow-Origin = %q, want http://localhost:3000", got)
		}
	})

	t.Run("未許可オリジンのプリフライトはヘッダー無しの204になる", func(t *testing.T) {
		router := setupCORSRouter(allowed, nil)
		w := doCORSRequest(router, http.MethodOptions, "http://evil.example.com")

		if w.Code != http.StatusNoContent {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusNoContent)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want 空", got)
		}
	})

	t.Run("通常のリクエストはハンドラーまで到達する", func(t *testing.T) {
		handlerCalled := false
		router := setupCORSRouter(allowed, &handlerCalled)

		w := doCORSRequest(router, http.MethodPost, "http://localhost:3000")

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if !handlerCalled {
			t.Error("ハンドラーが実行されていない")
		}
	})
}
