package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch はパスワードがハッシュと一致しないことを表す。
var ErrMismatch = errors.New("パスワードが一致しません")

// ErrCorruptHash は保存されているハッシュがbcrypt形式として不正であることを表す。
// 単なる不一致とは区別し、呼び出し側がログに記録できるようにする。
var ErrCorruptHash = errors.New("パスワードハッシュが破損しています")

// Hash はパスワードをbcryptでハッシュ化する。
// ソルトが毎回生成されるため、同じ入力でも呼び出しごとに異なる値を返す。
func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}
	return string(hashed), nil
}

// Verify はパスワードが保存済みハッシュと一致するかを検証する。
// bcryptの比較は定数時間で行われる。一致すればnil、不一致ならErrMismatch、
// ハッシュ自体が不正な場合はErrCorruptHashを返す。
func Verify(plain, hashed string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return fmt.Errorf("%w: %v", ErrCorruptHash, err)
}
