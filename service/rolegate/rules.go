package rolegate

import (
	"bytes"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PermissionType パーミッション種別
type PermissionType string

const (
	// TypeActions アクション実行のパーミッション
	TypeActions PermissionType = "actions"
	// TypePages ページルーティングのパーミッション
	TypePages PermissionType = "pages"
	// TypeViews ビュー描画のパーミッション
	TypeViews PermissionType = "views"
	// TypeMenus メニュー構成のパーミッション
	TypeMenus PermissionType = "menus"
	// TypeHooks フックハンドラのパーミッション
	TypeHooks PermissionType = "hooks"
	// TypeEvents イベントハンドラのパーミッション
	TypeEvents PermissionType = "events"
)

// PermissionTypes 全パーミッション種別 (正規順)
var PermissionTypes = []PermissionType{TypeActions, TypePages, TypeViews, TypeMenus, TypeHooks, TypeEvents}

// RuleKind ルールの動作種別
type RuleKind string

const (
	// RuleDeny 対象を拒否・抑制します
	RuleDeny RuleKind = "deny"
	// RuleAllow 対象を許可します (継承したdenyの上書きに使用)
	RuleAllow RuleKind = "allow"
	// RuleExtend 対象に新しい要素を追加します (views/menus/hooks/events)
	RuleExtend RuleKind = "extend"
	// RuleReplace 対象を別の要素で置き換えます (views/menus/hooks/events)
	RuleReplace RuleKind = "replace"
	// RuleRedirect 対象ページを別のページへ転送します (pages)
	RuleRedirect RuleKind = "redirect"
	// RuleForward RuleRedirectの別名 (pages)
	RuleForward RuleKind = "forward"
)

var ruleKinds = []interface{}{RuleDeny, RuleAllow, RuleExtend, RuleReplace, RuleRedirect, RuleForward}

// ViewExtension extendルールのビュー拡張指定
type ViewExtension struct {
	View     string `json:"view" yaml:"view"`
	Priority int    `json:"priority,omitempty" yaml:"priority"`
	Viewtype string `json:"viewtype,omitempty" yaml:"viewtype"`
}

// ViewReplacement replaceルールのビュー差し替え指定
type ViewReplacement struct {
	Location string `json:"location" yaml:"location"`
	Viewtype string `json:"viewtype,omitempty" yaml:"viewtype"`
}

// HandlerSpec フック・イベントハンドラの指定
//
// extendではHandlerを、replaceではOldHandlerとNewHandlerを使用します。
// denyではHandlerが空の場合、対象フックの全ハンドラが解除されます。
type HandlerSpec struct {
	Handler    string `json:"handler,omitempty" yaml:"handler"`
	OldHandler string `json:"old_handler,omitempty" yaml:"old_handler"`
	NewHandler string `json:"new_handler,omitempty" yaml:"new_handler"`
	Priority   int    `json:"priority,omitempty" yaml:"priority"`
}

// MenuItemSpec extend/replaceルールのメニュー項目指定
type MenuItemSpec struct {
	Name       string `json:"name" yaml:"name"`
	Text       string `json:"text" yaml:"text"`
	Href       string `json:"href" yaml:"href"`
	ParentName string `json:"parent_name,omitempty" yaml:"parent_name"`
}

// ContextList ルールが適用されるコンテキストの集合
//
// 設定上は単一の文字列でも文字列のリストでも書けます。
type ContextList []string

// UnmarshalJSON implements json.Unmarshaler interface.
func (c *ContextList) UnmarshalJSON(data []byte) error {
	t := bytes.TrimSpace(data)
	if len(t) > 0 && t[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ContextList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*c = list
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler interface.
func (c *ContextList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*c = ContextList{value.Value}
		return nil
	}
	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*c = list
	return nil
}

// ForwardTarget pagesルールの転送先
//
// 空文字はリファラへの転送を意味します。設定上のfalseは空文字として扱います。
type ForwardTarget string

// UnmarshalJSON implements json.Unmarshaler interface.
func (f *ForwardTarget) UnmarshalJSON(data []byte) error {
	t := bytes.TrimSpace(data)
	if bytes.Equal(t, []byte("false")) || bytes.Equal(t, []byte("true")) || bytes.Equal(t, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = ForwardTarget(s)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler interface.
func (f *ForwardTarget) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode || value.Tag == "!!bool" || value.Tag == "!!null" {
		*f = ""
		return nil
	}
	*f = ForwardTarget(value.Value)
	return nil
}

// Rule 1つのリソースキーに対するパーミッションルール
//
// ペイロードはKindに応じたフィールドのみが使用されます。
// 設定上の素の文字列 ("deny" など) はKindのみのルールに正規化されます。
type Rule struct {
	Kind            RuleKind         `json:"rule" yaml:"rule"`
	Context         ContextList      `json:"context,omitempty" yaml:"context"`
	Forward         ForwardTarget    `json:"forward,omitempty" yaml:"forward"`
	ViewExtension   *ViewExtension   `json:"view_extension,omitempty" yaml:"view_extension"`
	ViewReplacement *ViewReplacement `json:"view_replacement,omitempty" yaml:"view_replacement"`
	Hook            *HandlerSpec     `json:"hook,omitempty" yaml:"hook"`
	Event           *HandlerSpec     `json:"event,omitempty" yaml:"event"`
	MenuItem        *MenuItemSpec    `json:"menu_item,omitempty" yaml:"menu_item"`
}

// ruleAlias 再帰回避用
type ruleAlias Rule

// UnmarshalJSON implements json.Unmarshaler interface.
func (r *Rule) UnmarshalJSON(data []byte) error {
	t := bytes.TrimSpace(data)
	if len(t) > 0 && t[0] == '"' {
		var kind string
		if err := json.Unmarshal(data, &kind); err != nil {
			return err
		}
		*r = Rule{Kind: RuleKind(kind)}
		return nil
	}
	var a ruleAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = Rule(a)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler interface.
func (r *Rule) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*r = Rule{Kind: RuleKind(value.Value)}
		return nil
	}
	var a ruleAlias
	if err := value.Decode(&a); err != nil {
		return err
	}
	*r = Rule(a)
	return nil
}

// Validate implements validation.Validatable interface.
func (r Rule) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.Required, validation.In(ruleKinds...)),
	)
}

// handlerSpec フック・イベント面で使用するペイロードを返します
//
// 旧設定との互換のため、種別に対応するキーが無い場合はもう一方のキーを読みます。
func (r Rule) handlerSpec(pt PermissionType) *HandlerSpec {
	if pt == TypeEvents {
		if r.Event != nil {
			return r.Event
		}
		return r.Hook
	}
	if r.Hook != nil {
		return r.Hook
	}
	return r.Event
}

func (pt PermissionType) valid() bool {
	switch pt {
	case TypeActions, TypePages, TypeViews, TypeMenus, TypeHooks, TypeEvents:
		return true
	}
	return false
}

func (pt PermissionType) String() string {
	return string(pt)
}
