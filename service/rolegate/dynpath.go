package rolegate

import (
	"strings"

	"github.com/traPtitech/rolegate/model"
)

// RequestInfo 1リクエスト分のホスト側情報
//
// エンジンはリクエストを跨いで状態を持たず、必要な情報を全てここから受け取ります。
type RequestInfo struct {
	// User 認証済みユーザー (未認証の場合nil)
	User *model.UserInfo
	// PageOwner 現在のページを所有するユーザー (不在の場合nil)
	PageOwner *model.UserInfo
	// Contexts コンテキストスタック (末尾が最内)
	Contexts []string
	// Referrer リクエストのリファラ
	Referrer string
}

// ReplaceDynamicPaths 文字列中のプレースホルダを現在のリクエスト情報で置換します
//
// 対応するプレースホルダは {$self_username} {$self_guid} {$self_rolename}
// {$pageowner_name} {$pageowner_guid} {$pageowner_rolename} の6つです。
// 解決できないものは置換されずそのまま残ります。
func (e *Engine) ReplaceDynamicPaths(req *RequestInfo, s string) string {
	if req == nil || !strings.Contains(s, "{$") {
		return s
	}

	var pairs []string
	if req.User != nil {
		pairs = append(pairs,
			"{$self_username}", req.User.Name,
			"{$self_guid}", req.User.ID.String(),
		)
		if role := e.roleOfQuiet(req.User); role != nil {
			pairs = append(pairs, "{$self_rolename}", role.Name)
		}
	}
	if req.PageOwner != nil {
		pairs = append(pairs,
			"{$pageowner_name}", req.PageOwner.Name,
			"{$pageowner_guid}", req.PageOwner.ID.String(),
		)
		if role := e.roleOfQuiet(req.PageOwner); role != nil {
			pairs = append(pairs, "{$pageowner_rolename}", role.Name)
		}
	}
	if len(pairs) == 0 {
		return s
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
