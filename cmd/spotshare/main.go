// spotshareバックエンドのエントリポイント。
// ユーザー認証（JWTセッショントークン）、投稿のCRUD、レビューの
// upsertと評価統計の集計を単一のHTTPサービスとして提供する。
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/nao1215/spotshare/internal/server"
)

func main() {
	// .envが無い環境（本番等）ではプロセスの環境変数をそのまま使う
	if err := godotenv.Load(); err != nil {
		log.Printf(".envを読み込まずに起動します: %v", err)
	}

	cfg := server.Config{
		Port:        getEnvOr("PORT", "8080"),
		DBPath:      getEnvOr("DB_PATH", "/data/spotshare.db"),
		JWTSecret:   getEnvOr("JWT_SECRET", "dev-secret-key"),
		FrontendURL: getEnvOr("FRONTEND_URL", "http://localhost:3000"),
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("spotshareサーバーの初期化に失敗: %v", err)
	}

	log.Printf("spotshareサービスを起動します: :%s", cfg.Port)
	if err := srv.Run(); err != nil {
		log.Fatalf("spotshareサービスの起動に失敗: %v", err)
	}
}

// getEnvOr は環境変数の値を返す。未設定の場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
