package rolegate

// HandlerRegistry ホスト側のフック・イベントハンドラ登録への操作
type HandlerRegistry interface {
	// RegisterHandler 名前付きハンドラを指定した優先度で登録します
	RegisterHandler(name, typ, handler string, priority int)
	// UnregisterHandler 名前付きハンドラの登録を解除します
	UnregisterHandler(name, typ, handler string)
	// UnregisterAll 指定したフック・種別の全ハンドラを解除します
	UnregisterAll(name, typ string)
}

const (
	defaultHandlerPriority = 500
	allHandlerTypes        = "all"
)

// ApplyHookRules 現在のロールのhooksルールをレジストリへ適用します
func (e *Engine) ApplyHookRules(req *RequestInfo, reg HandlerRegistry) {
	e.applyHandlerRules(req, TypeHooks, reg)
}

// ApplyEventRules 現在のロールのeventsルールをレジストリへ適用します
func (e *Engine) ApplyEventRules(req *RequestInfo, reg HandlerRegistry) {
	e.applyHandlerRules(req, TypeEvents, reg)
}

// applyHandlerRules フック・イベント共通のルール適用
//
// ルールキーは "<名前>::<種別>" で、種別省略時は全種別 ("all") を指します。
// denyはハンドラ指定があればそのハンドラのみを、無ければ全ハンドラを解除し、
// extendはハンドラの追加、replaceはハンドラの差し替えを行います。
func (e *Engine) applyHandlerRules(req *RequestInfo, pt PermissionType, reg HandlerRegistry) {
	rules := e.rulesFor(req, pt)
	for key, rule := range rules.All() {
		name, typ := splitRuleKey(key)
		if typ == "" {
			typ = allHandlerTypes
		}
		if !CheckContext(rule, contextsOf(req), false) {
			continue
		}
		spec := rule.handlerSpec(pt)
		switch rule.Kind {
		case RuleDeny:
			if spec != nil && spec.Handler != "" {
				reg.UnregisterHandler(name, typ, spec.Handler)
				continue
			}
			reg.UnregisterAll(name, typ)
		case RuleExtend:
			if spec == nil || spec.Handler == "" {
				e.warnMalformed(pt, key)
				continue
			}
			reg.RegisterHandler(name, typ, spec.Handler, handlerPriority(spec))
		case RuleReplace:
			if spec == nil || spec.OldHandler == "" || spec.NewHandler == "" {
				e.warnMalformed(pt, key)
				continue
			}
			reg.UnregisterHandler(name, typ, spec.OldHandler)
			reg.RegisterHandler(name, typ, spec.NewHandler, handlerPriority(spec))
		default:
		}
	}
}

func handlerPriority(spec *HandlerSpec) int {
	if spec.Priority == 0 {
		return defaultHandlerPriority
	}
	return spec.Priority
}
