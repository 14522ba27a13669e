package rolegate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/traPtitech/rolegate/testutils"
)

func TestFlattener_Resolve(t *testing.T) {
	t.Parallel()

	repo := testutils.NewRepository()
	repo.MustSaveRole("default", "[]", `{"actions":{"baz":{"rule":"deny","forward":"bar/foo"},"bar/foo":"allow"}}`)
	repo.MustSaveRole("tester1", `["default"]`, `{"actions":{"foo/bar":"allow","foo/bar/baz":"deny","bar/foo":"deny"}}`)

	f := newFlattener(repo, zap.NewNop())

	role, err := repo.GetRoleByName("tester1")
	require.NoError(t, err)
	tree, err := f.flatten(role)
	require.NoError(t, err)

	actions := tree.Section(TypeActions)
	// 継承元のキー順を保ったまま、自身のルールが末尾に足され、重複キーは上書きされる
	assert.Equal(t, []string{"baz", "bar/foo", "foo/bar", "foo/bar/baz"}, actions.Keys())

	r, _ := actions.Get("baz")
	assert.Equal(t, RuleDeny, r.Kind)
	assert.Equal(t, ForwardTarget("bar/foo"), r.Forward)

	r, _ = actions.Get("bar/foo")
	assert.Equal(t, RuleDeny, r.Kind)

	r, _ = actions.Get("foo/bar")
	assert.Equal(t, RuleAllow, r.Kind)

	r, _ = actions.Get("foo/bar/baz")
	assert.Equal(t, RuleDeny, r.Kind)
}

func TestFlattener_MergeUnion(t *testing.T) {
	t.Parallel()

	repo := testutils.NewRepository()
	repo.MustSaveRole("base", "[]", `{"pages":{"k2":"deny"}}`)
	repo.MustSaveRole("child", `["base"]`, `{"pages":{"k1":"allow"}}`)

	f := newFlattener(repo, zap.NewNop())

	role, _ := repo.GetRoleByName("child")
	tree, err := f.flatten(role)
	require.NoError(t, err)
	assert.Equal(t, []string{"k2", "k1"}, tree.Section(TypePages).Keys())
}

func TestFlattener_Idempotence(t *testing.T) {
	t.Parallel()

	repo := testutils.NewRepository()
	repo.MustSaveRole("base", "[]", `{"actions":{"a":"deny"}}`)
	repo.MustSaveRole("child", `["base"]`, `{"actions":{"b":"allow"}}`)

	f := newFlattener(repo, zap.NewNop())
	role, _ := repo.GetRoleByName("child")

	first, err := f.flatten(role)
	require.NoError(t, err)
	second, err := f.flatten(role)
	require.NoError(t, err)
	assert.Equal(t, first.Section(TypeActions).Keys(), second.Section(TypeActions).Keys())
}

func TestFlattener_MissingExtends(t *testing.T) {
	t.Parallel()

	repo := testutils.NewRepository()
	repo.MustSaveRole("orphan", `["ghost","default"]`, `{"actions":{"a":"deny"}}`)
	repo.MustSaveRole("default", "[]", `{"actions":{"b":"allow"}}`)

	f := newFlattener(repo, zap.NewNop())
	role, _ := repo.GetRoleByName("orphan")

	// 未解決の継承先はルール無しとして読み飛ばされる
	tree, err := f.flatten(role)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, tree.Section(TypeActions).Keys())
}

func TestFlattener_ExtendsCycle(t *testing.T) {
	t.Parallel()

	repo := testutils.NewRepository()
	repo.MustSaveRole("a", `["b"]`, "{}")
	repo.MustSaveRole("b", `["a"]`, "{}")

	f := newFlattener(repo, zap.NewNop())
	role, _ := repo.GetRoleByName("a")

	_, err := f.flatten(role)
	assert.ErrorIs(t, err, ErrExtendsCycle)

	t.Run("SelfReference", func(t *testing.T) {
		t.Parallel()
		repo := testutils.NewRepository()
		repo.MustSaveRole("loop", `["loop"]`, "{}")

		f := newFlattener(repo, zap.NewNop())
		role, _ := repo.GetRoleByName("loop")
		_, err := f.flatten(role)
		assert.ErrorIs(t, err, ErrExtendsCycle)
	})
}

func TestFlattener_BrokenPermissions(t *testing.T) {
	t.Parallel()

	repo := testutils.NewRepository()
	repo.MustSaveRole("broken", "[]", "{not json")

	f := newFlattener(repo, zap.NewNop())
	role, _ := repo.GetRoleByName("broken")

	// 壊れたルールブロブはルール無しとして扱われる
	tree, err := f.flatten(role)
	require.NoError(t, err)
	assert.Equal(t, 0, tree.Section(TypeActions).Len())
}

func TestFlattener_Invalidate(t *testing.T) {
	t.Parallel()

	repo := testutils.NewRepository()
	repo.MustSaveRole("r", "[]", `{"actions":{"a":"deny"}}`)

	f := newFlattener(repo, zap.NewNop())
	role, _ := repo.GetRoleByName("r")
	_, err := f.flatten(role)
	require.NoError(t, err)

	repo.MustSaveRole("r", "[]", `{"actions":{"a":"allow"}}`)

	// 破棄するまではメモ化された結果が返る
	tree, _ := f.flatten(role)
	r, _ := tree.Section(TypeActions).Get("a")
	assert.Equal(t, RuleDeny, r.Kind)

	f.invalidate()
	role, _ = repo.GetRoleByName("r")
	tree, _ = f.flatten(role)
	r, _ = tree.Section(TypeActions).Get("a")
	assert.Equal(t, RuleAllow, r.Kind)
}
