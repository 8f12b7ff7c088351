package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL はセッショントークンの有効期限。
// JWTのexpクレームとCookieのmax-ageの両方にこの値を使用する。
const DefaultTTL = 6 * time.Hour

// ErrExpired はトークンの有効期限が切れていることを表す。
var ErrExpired = errors.New("トークンの有効期限が切れています")

// ErrInvalid はトークンが不正（署名不一致・形式不正・アルゴリズム不一致）であることを表す。
var ErrInvalid = errors.New("トークンが不正です")

// Config はトークンサービスの設定。
// 秘密鍵は信頼できるサーバー設定からのみ注入し、リクエストごとに
// 環境変数を読むような使い方はしない。
type Config struct {
	// Secret はJWT署名用の秘密鍵。
	Secret string
	// TTL はトークンの有効期限。ゼロ値の場合はDefaultTTLを使用する。
	TTL time.Duration
}

// Claims はセッショントークンのクレーム（ペイロード）を表す。
type Claims struct {
	jwt.RegisteredClaims
	// UserID は認証済みユーザーの一意識別子。
	UserID string `json:"user_id"`
}

// Service はセッショントークンの発行と検証を行う。
type Service struct {
	// secret はJWT署名用の秘密鍵。
	secret []byte
	// ttl はトークンの有効期限。
	ttl time.Duration
}

// New は新しいトークンサービスを生成する。
func New(cfg Config) *Service {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Service{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
	}
}

// TTL はトークンの有効期限を返す。Cookieのmax-age設定に使用する。
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue はユーザーIDからセッショントークンを生成する。
// 署名アルゴリズムはHS256に固定する。
func (s *Service) Issue(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "spotshare",
		},
		UserID: userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Validate はトークンの署名と有効期限を検証し、ユーザーIDを返す。
// 期限切れはErrExpired、それ以外の検証失敗はErrInvalidとして区別する。
// 許可するアルゴリズムはトークン側の宣言ではなくサーバー側で固定する
// （アルゴリズム置換攻撃の防止）。
func (s *Service) Validate(tokenString string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(_ *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return "", ErrInvalid
	}
	return claims.UserID, nil
}
