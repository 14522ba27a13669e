package rolegate

// ViewRegistry ホスト側のビューシステムへの操作
//
// エンジンはビュー名の解決やレンダリングには関与せず、ルールの適用結果を
// このインターフェイス越しにホストへ伝えます。
type ViewRegistry interface {
	// SuppressView 指定したビューを空として描画させます
	SuppressView(view string)
	// UnsuppressView SuppressViewによる抑制を解除します
	UnsuppressView(view string)
	// ExtendView viewの描画にextensionを指定した優先度で追加します
	ExtendView(view, extension string, priority int, viewtype string)
	// SetViewLocation ビューの解決先を変更します
	SetViewLocation(view, location, viewtype string)
}

const defaultViewExtendPriority = 501

// ApplyViewRules 現在のロールのviewsルールをレジストリへ適用します
//
// ルールキーはビュー名そのものです (パスマッチは行いません)。
// denyはビューの抑制、allowは抑制の解除、extendはビューの拡張、
// replaceは解決先の差し替えを行います。
func (e *Engine) ApplyViewRules(req *RequestInfo, reg ViewRegistry) {
	rules := e.rulesFor(req, TypeViews)
	for key, rule := range rules.All() {
		if !CheckContext(rule, contextsOf(req), false) {
			continue
		}
		switch rule.Kind {
		case RuleDeny:
			reg.SuppressView(key)
		case RuleAllow:
			reg.UnsuppressView(key)
		case RuleExtend:
			ext := rule.ViewExtension
			if ext == nil || ext.View == "" {
				e.warnMalformed(TypeViews, key)
				continue
			}
			priority := ext.Priority
			if priority == 0 {
				priority = defaultViewExtendPriority
			}
			reg.ExtendView(key, e.ReplaceDynamicPaths(req, ext.View), priority, ext.Viewtype)
		case RuleReplace:
			rep := rule.ViewReplacement
			if rep == nil || rep.Location == "" {
				e.warnMalformed(TypeViews, key)
				continue
			}
			reg.SetViewLocation(key, e.ReplaceDynamicPaths(req, rep.Location), rep.Viewtype)
		default:
		}
	}
}
