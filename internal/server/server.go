package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	serverdb "github.com/nao1215/spotshare/internal/server/db"
	"github.com/nao1215/spotshare/pkg/middleware"
	"github.com/nao1215/spotshare/pkg/token"
)

// Config はサーバーの構成。環境変数の読み取りはエントリポイントで行い、
// ハンドラやサービスが実行時に環境変数へアクセスすることはない。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string
	// DBPath はSQLiteデータベースファイルのパス。
	DBPath string
	// JWTSecret はセッショントークン署名用の秘密鍵。
	JWTSecret string
	// FrontendURL はCORSで許可するフロントエンドのオリジン。
	FrontendURL string
}

// Server はspotshareバックエンドのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はDBクエリ実行オブジェクト。
	queries *serverdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// tokens はセッショントークンの発行・検証サービス。
	tokens *token.Service
}

// NewServer は新しいspotshareサーバーを生成する。
// SQLiteデータベースの初期化とスキーマ作成を行う。
func NewServer(cfg Config) (*Server, error) {
	// modernc.org/sqliteのDSNは _pragma=名前(値) 形式。mattn形式のパラメータは
	// 黙って無視され、外部キーが無効のままになる
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", cfg.DBPath)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{cfg.FrontendURL}))

	s := &Server{
		router:  router,
		port:    cfg.Port,
		queries: serverdb.New(sqlDB),
		db:      sqlDB,
		tokens:  token.New(token.Config{Secret: cfg.JWTSecret}),
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
// 認証ゲートはルート単位で合成し、登録・ログイン・ログアウト・
// ログイン状態確認は公開ルートとする。
func (s *Server) setupRoutes() {
	user := s.router.Group("/user")
	{
		// ユーザー登録
		user.POST("/register", s.handleRegister())
		// ログイン
		user.POST("/login", s.handleLogin())
		// ログアウト（Cookie削除のみ。発行済みトークンは失効しない）
		user.POST("/logout", s.handleLogout())
		// ログイン状態の確認。トークンが無くてもエラーにしない
		user.GET("/status", s.handleStatus())
		// プロフィール取得（要認証）
		user.GET("/profile", middleware.Auth(s.tokens), s.handleProfile())
	}

	posts := s.router.Group("/posts")
	posts.Use(middleware.Auth(s.tokens))
	{
		// 投稿一覧取得（レビュー統計付き）
		posts.GET("/all", s.handleListPosts())
		// 投稿作成
		posts.POST("/create", s.handleCreatePost())
		// タイトルによる投稿取得
		posts.GET("/:title", s.handleGetPostByTitle())
		// レビューの作成・更新（upsert）
		posts.PUT("/review/:id", s.handleUpsertReview())
		// 投稿削除（所有者のみ）
		posts.DELETE("/delete/:id", s.handleDeletePost())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "spotshare"})
	})
}

// setSessionCookie はセッショントークンをHttpOnly Cookieとして設定する。
// max-ageはトークンのTTLと厳密に一致させる。
func (s *Server) setSessionCookie(c *gin.Context, tokenString string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, tokenString, int(s.tokens.TTL().Seconds()), "/", "", true, true)
}

// clearSessionCookie はセッションCookieを削除する。
func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, "", -1, "/", "", true, true)
}

// isUniqueViolation はSQLiteのUNIQUE制約違反エラーかどうかを判定する。
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
