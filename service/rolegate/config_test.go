package rolegate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRolesYAML = `
moderator:
  title: Moderator
  extends: [default]
  permissions:
    actions:
      comment/delete: allow
      regexp(/^admin\/.*$/): deny
    pages:
      blog/new:
        rule: forward
        forward: blog/all
editor:
  title: Editor
  permissions:
    views:
      river/item:
        rule: extend
        view_extension:
          view: roles/river_note
`

func TestLoadRolesConfig(t *testing.T) {
	t.Parallel()

	config, err := LoadRolesConfig(strings.NewReader(testRolesYAML))
	require.NoError(t, err)
	require.Len(t, config, 2)

	mod := config["moderator"]
	assert.Equal(t, "Moderator", mod.Title)
	assert.Equal(t, []string{"default"}, mod.Extends)
	assert.Equal(t, []string{"comment/delete", `regexp(/^admin\/.*$/)`}, mod.Permissions.Section(TypeActions).Keys())

	r, ok := mod.Permissions.Section(TypePages).Get("blog/new")
	require.True(t, ok)
	assert.Equal(t, RuleForward, r.Kind)
	assert.Equal(t, ForwardTarget("blog/all"), r.Forward)

	ed := config["editor"]
	assert.Empty(t, ed.Extends)
	r, ok = ed.Permissions.Section(TypeViews).Get("river/item")
	require.True(t, ok)
	require.NotNil(t, r.ViewExtension)
	assert.Equal(t, "roles/river_note", r.ViewExtension.View)
}

func TestLoadRolesConfig_Empty(t *testing.T) {
	t.Parallel()

	config, err := LoadRolesConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, config)
}

func TestLoadRolesConfig_Invalid(t *testing.T) {
	t.Parallel()

	t.Run("BadYAML", func(t *testing.T) {
		t.Parallel()
		_, err := LoadRolesConfig(strings.NewReader(":\n:::"))
		assert.Error(t, err)
	})

	t.Run("BadRuleKind", func(t *testing.T) {
		t.Parallel()
		_, err := LoadRolesConfig(strings.NewReader(`
mod:
  permissions:
    actions:
      comment/save: banish
`))
		assert.Error(t, err)
	})

	t.Run("EmptyRoleName", func(t *testing.T) {
		t.Parallel()
		_, err := LoadRolesConfig(strings.NewReader(`
"":
  title: Broken
`))
		assert.Error(t, err)
	})
}
