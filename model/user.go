package model

import "github.com/gofrs/uuid"

// UserInfo エンジンが参照するホストのユーザー情報
//
// ユーザーエンティティ自体はホストが所有します。
// エンジンはロール解決と動的パス置換に必要な属性のみを受け取ります。
type UserInfo struct {
	ID    uuid.UUID
	Name  string
	Admin bool
}
