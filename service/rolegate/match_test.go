package rolegate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		Rule     string
		Path     string
		Expected bool
	}{
		{"blog/edit", "/blog/edit", true},
		{"/blog/edit/", "blog/edit", true},
		{"http://example.com/blog/edit", "blog/edit", true},
		{"Blog/Edit", "blog/edit", true},
		{"/blog/new/345", "/blog/new/", false},
		{"blog/new", "blog/new/345", false},
		{`regexp(/^blog\/.*$/)`, "blog/new/345", true},
		{`regexp(/^blog\/.*$/)`, "pages/new", false},
		{`regexp(/^admin\/((?!administer_utilities\/reportedcontent).)*$/)`, "admin/plugins", true},
		{`regexp(/^admin\/((?!administer_utilities\/reportedcontent).)*$/)`, "admin/administer_utilities/reportedcontent", false},
		{`regexp(/^BLOG$/i)`, "blog", true},
		{`regexp(/^blog(/)`, "blog", false}, // コンパイル不能なパターンはマッチしない
		{"", "", true},
	}

	for _, c := range cases {
		c := c
		t.Run(c.Rule+"_"+c.Path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, c.Expected, MatchPath(c.Rule, c.Path))
		})
	}
}

func TestCheckContext(t *testing.T) {
	t.Parallel()

	stack := []string{"main", "widgets", "profile"}

	t.Run("NoContext", func(t *testing.T) {
		t.Parallel()
		assert.True(t, CheckContext(Rule{Kind: RuleDeny}, stack, false))
		assert.True(t, CheckContext(Rule{Kind: RuleDeny}, stack, true))
		assert.True(t, CheckContext(Rule{Kind: RuleDeny}, nil, true))
	})

	t.Run("Strict", func(t *testing.T) {
		t.Parallel()
		r := Rule{Kind: RuleDeny, Context: ContextList{"widgets"}}
		assert.False(t, CheckContext(r, stack, true))
		assert.True(t, CheckContext(Rule{Kind: RuleDeny, Context: ContextList{"profile"}}, stack, true))
		assert.False(t, CheckContext(r, nil, true))
	})

	t.Run("NonStrict", func(t *testing.T) {
		t.Parallel()
		assert.True(t, CheckContext(Rule{Kind: RuleDeny, Context: ContextList{"widgets"}}, stack, false))
		assert.True(t, CheckContext(Rule{Kind: RuleDeny, Context: ContextList{"admin", "main"}}, stack, false))
		assert.False(t, CheckContext(Rule{Kind: RuleDeny, Context: ContextList{"admin"}}, stack, false))
	})
}
