// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// Cookieで運ばれるセッショントークンの検証（認証ゲート）、パニックリカバリ、
// CORS設定を含む。認証ゲートはルートグループ単位で合成し、
// 公開ルートには適用しない設計とする。
package middleware
