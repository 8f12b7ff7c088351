// Package token はセッショントークン（JWT）の発行と検証を提供する。
//
// トークンは署名付きの自己完結型クレデンシャルであり、サーバー側に
// セッション状態を持たない。失効リストは存在しないため、ログアウトは
// クライアント側でのCookie削除のみで実現される（既知の制限）。
package token
