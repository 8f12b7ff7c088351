package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/spotshare/pkg/token"
)

// CookieName はセッショントークンを運ぶCookieの名前。
const CookieName = "authCookie"

// contextKeyUserID はGinコンテキストにユーザーIDを格納するキー。
const contextKeyUserID = "user_id"

// Auth はCookieからセッショントークンを取り出して検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストに "user_id" を設定してハンドラに処理を渡す。
// 失敗した場合は種別ごとのメッセージと共に401を返し、ハンドラは呼び出さない。
// 認証必須のルートグループにのみ適用し、登録・ログイン等の公開ルートには適用しない。
func Auth(svc *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(CookieName)
		if err != nil || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "認証が必要です。トークンがありません",
			})
			return
		}

		userID, err := svc.Validate(tokenString)
		if err != nil {
			if errors.Is(err, token.ErrExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "認証に失敗しました。トークンの有効期限が切れています",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "認証に失敗しました。トークンが不正です",
			})
			return
		}

		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID はGinコンテキストから認証済みユーザーのIDを取得する。
// Authミドルウェアが事前に適用されている必要がある。
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get(contextKeyUserID)
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}
