// Package server はspotshareバックエンドのHTTP API実装を提供する。
//
// ユーザー登録・認証（JWTセッショントークン）、投稿のCRUD、
// 投稿に対するレビューのupsertと評価統計の集計を担当する。
// 永続化は単一のSQLiteデータベースで行い、レビューは
// (ユーザー, 投稿) の組につき最大1件という一意制約を持つ。
package server
