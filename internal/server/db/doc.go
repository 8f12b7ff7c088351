// Package db はspotshareのデータベースアクセス層を提供する。
//
// ORMは使用せず、すべてのクエリをパラメータ化された直接のSQL文として
// 定義する。トランザクションが必要な操作はWithTxで同じクエリ群を
// トランザクション上で実行できる。
package db
