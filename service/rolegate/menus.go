package rolegate

import "slices"

// MenuItem 構成済みメニューの1項目
type MenuItem struct {
	Name       string `json:"name"`
	Text       string `json:"text"`
	Href       string `json:"href"`
	ParentName string `json:"parent_name,omitempty"`
}

// AssembleMenu ホストが構築したメニューへロールのmenusルールを適用します
//
// ルールキーは "<メニュー名>::<項目名>" または "<メニュー名>" (メニュー全体) です。
// denyはメニュー全体のクリアまたは項目の除去、extendは項目の追加、
// replaceは項目の差し替え (子項目の親付け替えを含む) を行います。
// 最後にpages/actionsのdenyルールに該当するリンクを持つ項目を取り除きます。
func (e *Engine) AssembleMenu(req *RequestInfo, menuName string, items []MenuItem) []MenuItem {
	items = slices.Clone(items)
	rules := e.rulesFor(req, TypeMenus)
	for key, rule := range rules.All() {
		name, item := splitRuleKey(key)
		if name != menuName {
			continue
		}
		if !CheckContext(rule, contextsOf(req), false) {
			continue
		}
		switch rule.Kind {
		case RuleDeny:
			if item == "" {
				items = items[:0]
				continue
			}
			items = slices.DeleteFunc(items, func(m MenuItem) bool {
				return m.Name == item || m.ParentName == item
			})
		case RuleExtend:
			spec := rule.MenuItem
			if spec == nil || spec.Name == "" {
				e.warnMalformed(TypeMenus, key)
				continue
			}
			items = append(items, e.buildMenuItem(req, spec))
		case RuleReplace:
			spec := rule.MenuItem
			if spec == nil || spec.Name == "" {
				e.warnMalformed(TypeMenus, key)
				continue
			}
			replacement := e.buildMenuItem(req, spec)
			for i := range items {
				switch {
				case items[i].Name == item:
					items[i] = replacement
				case items[i].ParentName == item:
					items[i].ParentName = replacement.Name
				}
			}
		default:
		}
	}
	return e.cleanupMenu(req, items)
}

func (e *Engine) buildMenuItem(req *RequestInfo, spec *MenuItemSpec) MenuItem {
	return MenuItem{
		Name:       spec.Name,
		Text:       spec.Text,
		Href:       e.ReplaceDynamicPaths(req, spec.Href),
		ParentName: spec.ParentName,
	}
}

// cleanupMenu 拒否されるページやアクションへのリンクを持つ項目を取り除きます
func (e *Engine) cleanupMenu(req *RequestInfo, items []MenuItem) []MenuItem {
	if len(items) == 0 {
		return items
	}
	var denied []string
	for _, pt := range []PermissionType{TypePages, TypeActions} {
		for key, rule := range e.rulesFor(req, pt).All() {
			if rule.Kind != RuleDeny || !CheckContext(rule, contextsOf(req), false) {
				continue
			}
			denied = append(denied, e.ReplaceDynamicPaths(req, key))
		}
	}
	if len(denied) == 0 {
		return items
	}
	return slices.DeleteFunc(items, func(m MenuItem) bool {
		for _, d := range denied {
			if MatchPath(d, m.Href) {
				return true
			}
		}
		return false
	})
}
