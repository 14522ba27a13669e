package rolegate

import "go.uber.org/zap"

// AuthorizeAction アクション実行の可否を判定します
//
// ロールのactionsルールのうち、動的パス置換後のキーが要求された
// アクション名にマッチするものを挿入順に評価します。denyにマッチした
// 時点で実行は拒否されます。ロールが解決できない場合は制限なしです。
func (e *Engine) AuthorizeAction(req *RequestInfo, action string) bool {
	rules := e.rulesFor(req, TypeActions)
	for key, rule := range rules.All() {
		if !MatchPath(e.ReplaceDynamicPaths(req, key), action) {
			continue
		}
		if !CheckContext(rule, contextsOf(req), false) {
			continue
		}
		switch rule.Kind {
		case RuleDeny:
			e.logger.Info("action denied by role rule",
				zap.String("action", action),
				zap.String("rule", key),
			)
			return false
		default:
			// allowおよびその他はそのまま次のルールへ
		}
	}
	return true
}

func contextsOf(req *RequestInfo) []string {
	if req == nil {
		return nil
	}
	return req.Contexts
}
