package rolegate

import (
	"strings"

	"go.uber.org/zap"
)

// PageDecision ページゲートの判定結果
type PageDecision struct {
	// Denied アクセス拒否かどうか。拒否の場合もForwardへ転送します
	Denied bool
	// HasForward 転送が必要かどうか
	HasForward bool
	// Forward 転送先パス。空文字はリファラへの転送を意味します
	Forward string
}

// Allowed ページをそのまま表示してよいかどうか
func (d PageDecision) Allowed() bool {
	return !d.Denied && !d.HasForward
}

// AuthorizePage ページルートへのアクセスを判定します
//
// ルートセグメントを"/"で結合したパスに対して、動的パス置換後の
// pagesルールを挿入順に評価します。denyは拒否と転送、redirect/forwardは
// 転送のみを引き起こし、いずれも最初にマッチした時点で確定します。
func (e *Engine) AuthorizePage(req *RequestInfo, segments []string) PageDecision {
	path := strings.Join(segments, "/")
	rules := e.rulesFor(req, TypePages)
	for key, rule := range rules.All() {
		if !MatchPath(e.ReplaceDynamicPaths(req, key), path) {
			continue
		}
		if !CheckContext(rule, contextsOf(req), false) {
			continue
		}
		switch rule.Kind {
		case RuleDeny:
			e.logger.Info("page denied by role rule",
				zap.String("path", path),
				zap.String("rule", key),
			)
			return PageDecision{
				Denied:     true,
				HasForward: true,
				Forward:    e.ReplaceDynamicPaths(req, string(rule.Forward)),
			}
		case RuleRedirect, RuleForward:
			return PageDecision{
				HasForward: true,
				Forward:    e.ReplaceDynamicPaths(req, string(rule.Forward)),
			}
		default:
		}
	}
	return PageDecision{}
}
