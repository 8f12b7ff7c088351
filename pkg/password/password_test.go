package password

import (
	"errors"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	t.Run("正しいパスワードの検証に成功する", func(t *testing.T) {
		hashed, err := Hash("s3cret-pass")
		if err != nil {
			t.Fatalf("ハッシュ化に失敗: %v", err)
		}
		if err := Verify("s3cret-pass", hashed); err != nil {
			t.Errorf("正しいパスワードの検証に失敗: %v", err)
		}
	})

	t.Run("誤ったパスワードはErrMismatchになる", func(t *testing.T) {
		hashed, err := Hash("s3cret-pass")
		if err != nil {
			t.Fatalf("ハッシュ化に失敗: %v", err)
		}
		if err := Verify("wrong-pass", hashed); !errors.Is(err, ErrMismatch) {
			t.Errorf("ErrMismatchを期待したが %v が返った", err)
		}
	})

	t.Run("ソルトにより同じ入力でもハッシュ値は毎回異なる", func(t *testing.T) {
		first, err := Hash("same-input")
		if err != nil {
			t.Fatalf("1回目のハッシュ化に失敗: %v", err)
		}
		second, err := Hash("same-input")
		if err != nil {
			t.Fatalf("2回目のハッシュ化に失敗: %v", err)
		}
		if first == second {
			t.Error("2回のハッシュ値が一致した（ソルトが効いていない）")
		}
		if err := Verify("same-input", first); err != nil {
			t.Errorf("1回目のハッシュの検証に失敗: %v", err)
		}
		if err := Verify("same-input", second); err != nil {
			t.Errorf("2回目のハッシュの検証に失敗: %v", err)
		}
	})

	t.Run("不正なハッシュはErrCorruptHashになる", func(t *testing.T) {
		if err := Verify("any-pass", "not-a-bcrypt-hash"); !errors.Is(err, ErrCorruptHash) {
			t.Errorf("ErrCorruptHashを期待したが %v が返った", err)
		}
	})
}
