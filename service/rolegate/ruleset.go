package rolegate

import (
	"bytes"
	"io"
	"iter"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// RuleSet 1つのパーミッション種別に属する、キー順序を保持するルールの集合
//
// フラット化のマージはこの順序の上で行われます。既存キーへの上書きは
// 元の位置を保ち、新規キーは末尾に追加されます。
type RuleSet struct {
	keys  []string
	rules map[string]Rule
}

// NewRuleSet 空のRuleSetを生成します
func NewRuleSet() *RuleSet {
	return &RuleSet{rules: make(map[string]Rule)}
}

// Set ルールを設定します。既存キーは位置を保って上書きされます
func (s *RuleSet) Set(key string, r Rule) {
	if _, ok := s.rules[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.rules[key] = r
}

// Get 指定したキーのルールを取得します
func (s *RuleSet) Get(key string) (Rule, bool) {
	r, ok := s.rules[key]
	return r, ok
}

// Len ルール数を返します
func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys キーを挿入順で返します
func (s *RuleSet) Keys() []string {
	if s == nil {
		return nil
	}
	result := make([]string, len(s.keys))
	copy(result, s.keys)
	return result
}

// All 全ルールを挿入順で返します
func (s *RuleSet) All() iter.Seq2[string, Rule] {
	return func(yield func(string, Rule) bool) {
		if s == nil {
			return
		}
		for _, k := range s.keys {
			if !yield(k, s.rules[k]) {
				return
			}
		}
	}
}

// Merge otherの全ルールをこの集合に取り込みます。同一キーはotherの値で上書きされます
func (s *RuleSet) Merge(other *RuleSet) {
	for k, r := range other.All() {
		s.Set(k, r)
	}
}

// Clone 集合の複製を返します
func (s *RuleSet) Clone() *RuleSet {
	c := NewRuleSet()
	c.Merge(s)
	return c
}

// MarshalJSON implements json.Marshaler interface.
//
// キーの挿入順を保ったJSONオブジェクトを出力します。
func (s *RuleSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		rb, err := json.Marshal(s.rules[k])
		if err != nil {
			return nil, err
		}
		buf.Write(rb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler interface.
//
// JSONオブジェクトのキー出現順をそのまま挿入順として読み込みます。
func (s *RuleSet) UnmarshalJSON(data []byte) error {
	s.keys = nil
	s.rules = make(map[string]Rule)

	it := json.BorrowIterator(data)
	defer json.ReturnIterator(it)

	var cbErr error
	it.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		raw := it.SkipAndReturnBytes()
		var r Rule
		if err := json.Unmarshal(raw, &r); err != nil {
			cbErr = err
			return false
		}
		s.Set(key, r)
		return true
	})
	if cbErr != nil {
		return cbErr
	}
	if it.Error != nil && it.Error != io.EOF {
		return it.Error
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler interface.
func (s *RuleSet) UnmarshalYAML(value *yaml.Node) error {
	s.keys = nil
	s.rules = make(map[string]Rule)

	if value.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		var r Rule
		if err := value.Content[i+1].Decode(&r); err != nil {
			return err
		}
		s.Set(value.Content[i].Value, r)
	}
	return nil
}

// PermissionTree パーミッション種別ごとのルール集合
type PermissionTree map[PermissionType]*RuleSet

// Section 指定した種別のルール集合を返します。無い場合はnilを返します
func (t PermissionTree) Section(pt PermissionType) *RuleSet {
	if t == nil {
		return nil
	}
	return t[pt]
}

// section 指定した種別のルール集合を返します。無い場合は作成します
func (t PermissionTree) section(pt PermissionType) *RuleSet {
	s, ok := t[pt]
	if !ok {
		s = NewRuleSet()
		t[pt] = s
	}
	return s
}

// Merge otherの全セクションをこのツリーに取り込みます
func (t PermissionTree) Merge(other PermissionTree) {
	for _, pt := range PermissionTypes {
		o := other.Section(pt)
		if o.Len() == 0 {
			continue
		}
		t.section(pt).Merge(o)
	}
}

// Clone ツリーの複製を返します
func (t PermissionTree) Clone() PermissionTree {
	c := PermissionTree{}
	c.Merge(t)
	return c
}

// MarshalJSON implements json.Marshaler interface.
//
// セクションは正規順 (actions, pages, views, menus, hooks, events) で出力します。
func (t PermissionTree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, pt := range PermissionTypes {
		s := t.Section(pt)
		if s == nil {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(`"` + string(pt) + `":`)
		b, err := json.Marshal(s)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (t *PermissionTree) UnmarshalJSON(data []byte) error {
	*t = PermissionTree{}

	it := json.BorrowIterator(data)
	defer json.ReturnIterator(it)

	var cbErr error
	it.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		raw := it.SkipAndReturnBytes()
		pt := PermissionType(key)
		if !pt.valid() {
			// 未知のセクションは無視する
			return true
		}
		s := NewRuleSet()
		if err := json.Unmarshal(raw, s); err != nil {
			cbErr = err
			return false
		}
		(*t)[pt] = s
		return true
	})
	if cbErr != nil {
		return cbErr
	}
	if it.Error != nil && it.Error != io.EOF {
		return it.Error
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler interface.
func (t *PermissionTree) UnmarshalYAML(value *yaml.Node) error {
	*t = PermissionTree{}
	if value.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		pt := PermissionType(value.Content[i].Value)
		if !pt.valid() {
			continue
		}
		s := NewRuleSet()
		if err := value.Content[i+1].Decode(s); err != nil {
			return err
		}
		(*t)[pt] = s
	}
	return nil
}

// EncodePermissions パーミッションツリーをロールレコードに格納する文字列に変換します
func EncodePermissions(t PermissionTree) (string, error) {
	if t == nil {
		t = PermissionTree{}
	}
	return json.MarshalToString(t)
}

// DecodePermissions ロールレコードに格納された文字列をパーミッションツリーに復元します
func DecodePermissions(s string) (PermissionTree, error) {
	t := PermissionTree{}
	if len(s) == 0 {
		return t, nil
	}
	if err := json.UnmarshalFromString(s, &t); err != nil {
		return nil, err
	}
	return t, nil
}
