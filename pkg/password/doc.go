// Package password はbcryptによるパスワードのハッシュ化と検証を提供する。
//
// ソルト付きの適応型コストハッシュを使用するため、同じパスワードでも
// 呼び出しごとに異なるハッシュ値が生成される。
package password
