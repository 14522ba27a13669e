package rolegate

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/traPtitech/rolegate/model"
	"github.com/traPtitech/rolegate/repository"
	"github.com/traPtitech/rolegate/testutils"
)

func newTestEngine(t *testing.T) (*Engine, *testutils.Repository) {
	t.Helper()
	repo := testutils.NewRepository()
	return NewEngine(repo, zap.NewNop()), repo
}

func mustUserInfo(name string, admin bool) *model.UserInfo {
	return &model.UserInfo{
		ID:    uuid.Must(uuid.NewV4()),
		Name:  name,
		Admin: admin,
	}
}

func TestComputedRoleName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.VisitorRole, ComputedRoleName(nil))
	assert.Equal(t, model.AdminRole, ComputedRoleName(mustUserInfo("root", true)))
	assert.Equal(t, model.DefaultRole, ComputedRoleName(mustUserInfo("alice", false)))
}

func TestEngine_RoleOf(t *testing.T) {
	t.Parallel()

	engine, repo := newTestEngine(t)
	repo.MustSaveRole("editor", "[]", "{}")

	t.Run("Computed", func(t *testing.T) {
		t.Parallel()
		role, err := engine.RoleOf(mustUserInfo("alice", false))
		require.NoError(t, err)
		assert.Equal(t, model.DefaultRole, role.Name)

		role, err = engine.RoleOf(mustUserInfo("root", true))
		require.NoError(t, err)
		assert.Equal(t, model.AdminRole, role.Name)

		role, err = engine.RoleOf(nil)
		require.NoError(t, err)
		assert.Equal(t, model.VisitorRole, role.Name)
	})

	t.Run("ExplicitWins", func(t *testing.T) {
		t.Parallel()
		user := mustUserInfo("bob", true)
		require.NoError(t, repo.SetUserRole(user.ID, "editor"))

		role, err := engine.RoleOf(user)
		require.NoError(t, err)
		assert.Equal(t, "editor", role.Name)
	})

	t.Run("DanglingAssignment", func(t *testing.T) {
		t.Parallel()
		user := mustUserInfo("carol", false)
		require.NoError(t, repo.SetUserRole(user.ID, "ghost"))

		// 割り当て先のロールが存在しない場合は計算ロールへフォールバック
		role, err := engine.RoleOf(user)
		require.NoError(t, err)
		assert.Equal(t, model.DefaultRole, role.Name)
	})
}

func TestEngine_HasRole(t *testing.T) {
	t.Parallel()

	engine, repo := newTestEngine(t)
	repo.MustSaveRole("editor", "[]", "{}")

	user := mustUserInfo("alice", false)
	ok, err := engine.HasRole(user, "editor")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetUserRole(user.ID, "editor"))
	ok, err = engine.HasRole(user, "editor")
	require.NoError(t, err)
	assert.True(t, ok)

	// 計算ロールは明示的な割り当てとはみなさない
	ok, err = engine.HasRole(mustUserInfo("bob", false), model.DefaultRole)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_SetRole(t *testing.T) {
	t.Parallel()

	engine, repo := newTestEngine(t)
	repo.MustSaveRole("editor", "[]", "{}")
	repo.MustSaveRole("reviewer", "[]", "{}")

	t.Run("Assign", func(t *testing.T) {
		t.Parallel()
		user := mustUserInfo("alice", false)
		role, _ := repo.GetRoleByName("editor")

		changed, err := engine.SetRole(user, role)
		require.NoError(t, err)
		assert.True(t, changed)

		name, err := repo.GetUserRoleName(user.ID)
		require.NoError(t, err)
		assert.Equal(t, "editor", name)
	})

	t.Run("NoOpOnSameRole", func(t *testing.T) {
		t.Parallel()
		user := mustUserInfo("bob", false)
		role, _ := repo.GetRoleByName("reviewer")

		changed, err := engine.SetRole(user, role)
		require.NoError(t, err)
		require.True(t, changed)

		changed, err = engine.SetRole(user, role)
		require.NoError(t, err)
		assert.False(t, changed)

		name, err := repo.GetUserRoleName(user.ID)
		require.NoError(t, err)
		assert.Equal(t, "reviewer", name)
	})

	t.Run("ReservedClearsAssignment", func(t *testing.T) {
		t.Parallel()
		user := mustUserInfo("carol", false)
		editor, _ := repo.GetRoleByName("editor")

		_, err := engine.SetRole(user, editor)
		require.NoError(t, err)

		def, _ := repo.GetRoleByName(model.DefaultRole)
		changed, err := engine.SetRole(user, def)
		require.NoError(t, err)
		assert.True(t, changed)

		_, err = repo.GetUserRoleName(user.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("ComputedSameRoleIsNoOp", func(t *testing.T) {
		t.Parallel()
		user := mustUserInfo("dave", false)
		def, _ := repo.GetRoleByName(model.DefaultRole)

		changed, err := engine.SetRole(user, def)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("NilArgs", func(t *testing.T) {
		t.Parallel()
		_, err := engine.SetRole(nil, nil)
		assert.ErrorIs(t, err, repository.ErrNilID)
	})
}

func TestEngine_AssignRoleByName(t *testing.T) {
	t.Parallel()

	engine, repo := newTestEngine(t)
	repo.MustSaveRole("editor", "[]", "{}")

	t.Run("Known", func(t *testing.T) {
		t.Parallel()
		user := mustUserInfo("alice", false)

		changed, err := engine.AssignRoleByName(user, "editor")
		require.NoError(t, err)
		assert.True(t, changed)

		name, err := repo.GetUserRoleName(user.ID)
		require.NoError(t, err)
		assert.Equal(t, "editor", name)
	})

	t.Run("UnknownSkipped", func(t *testing.T) {
		t.Parallel()
		user := mustUserInfo("bob", false)

		// 存在しないロール名は黙って読み飛ばす
		changed, err := engine.AssignRoleByName(user, "ghost")
		require.NoError(t, err)
		assert.False(t, changed)

		_, err = repo.GetUserRoleName(user.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("EmptySkipped", func(t *testing.T) {
		t.Parallel()
		user := mustUserInfo("carol", false)

		changed, err := engine.AssignRoleByName(user, "")
		require.NoError(t, err)
		assert.False(t, changed)
	})
}

func TestEngine_UsersWithRole(t *testing.T) {
	t.Parallel()

	engine, repo := newTestEngine(t)
	repo.MustSaveRole("editor", "[]", "{}")

	plain := mustUserInfo("alice", false)
	admin := mustUserInfo("root", true)
	assigned := mustUserInfo("bob", false)
	adminAssigned := mustUserInfo("dana", true)
	dangling := mustUserInfo("carol", false)
	require.NoError(t, repo.SetUserRole(assigned.ID, "editor"))
	require.NoError(t, repo.SetUserRole(adminAssigned.ID, "editor"))
	require.NoError(t, repo.SetUserRole(dangling.ID, "ghost"))

	users := []*model.UserInfo{plain, admin, assigned, adminAssigned, dangling, nil}

	t.Run("Explicit", func(t *testing.T) {
		t.Parallel()
		result, err := engine.UsersWithRole(users, "editor")
		require.NoError(t, err)
		assert.Equal(t, []*model.UserInfo{assigned, adminAssigned}, result)
	})

	t.Run("DefaultByPredicate", func(t *testing.T) {
		t.Parallel()
		// 割り当ての無い一般ユーザーのみ。割り当て先が消えている場合も含む
		result, err := engine.UsersWithRole(users, model.DefaultRole)
		require.NoError(t, err)
		assert.Equal(t, []*model.UserInfo{plain, dangling}, result)
	})

	t.Run("AdminByPredicate", func(t *testing.T) {
		t.Parallel()
		// 明示的な割り当てを持つ管理者は含まれない
		result, err := engine.UsersWithRole(users, model.AdminRole)
		require.NoError(t, err)
		assert.Equal(t, []*model.UserInfo{admin}, result)
	})

	t.Run("Visitor", func(t *testing.T) {
		t.Parallel()
		result, err := engine.UsersWithRole(users, model.VisitorRole)
		require.NoError(t, err)
		assert.Equal(t, []*model.UserInfo{nil}, result)
	})

	t.Run("NoMatch", func(t *testing.T) {
		t.Parallel()
		result, err := engine.UsersWithRole(users, "reviewer")
		require.NoError(t, err)
		assert.Empty(t, result)
	})
}

func TestEngine_Selectable(t *testing.T) {
	t.Parallel()

	engine, repo := newTestEngine(t)
	repo.MustSaveRole("editor", "[]", "{}")
	repo.MustSaveRole("reviewer", "[]", "{}")

	roles, err := engine.Selectable()
	require.NoError(t, err)

	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	assert.ElementsMatch(t, []string{"editor", "reviewer"}, names)
}

func TestEngine_RoleMembers(t *testing.T) {
	t.Parallel()

	engine, repo := newTestEngine(t)
	repo.MustSaveRole("editor", "[]", "{}")

	u1 := mustUserInfo("alice", false)
	u2 := mustUserInfo("bob", false)
	require.NoError(t, repo.SetUserRole(u1.ID, "editor"))
	require.NoError(t, repo.SetUserRole(u2.ID, "editor"))

	members, err := engine.RoleMembers("editor")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{u1.ID, u2.ID}, members)

	_, err = engine.RoleMembers(model.DefaultRole)
	assert.ErrorIs(t, err, repository.ErrReserved)
}

func TestEngine_Permissions_CallerMutationDoesNotPoisonCache(t *testing.T) {
	t.Parallel()

	engine, repo := newTestEngine(t)
	repo.MustSaveRole("editor", "[]", `{"actions":{"comment/save":"deny"}}`)

	role, err := repo.GetRoleByName("editor")
	require.NoError(t, err)

	tree, err := engine.Permissions(role)
	require.NoError(t, err)
	tree.section(TypeActions).Set("comment/save", Rule{Kind: RuleAllow})
	tree.section(TypeActions).Set("blog/save", Rule{Kind: RuleDeny})

	again, err := engine.Permissions(role)
	require.NoError(t, err)
	r, ok := again.Section(TypeActions).Get("comment/save")
	require.True(t, ok)
	assert.Equal(t, RuleDeny, r.Kind)
	_, ok = again.Section(TypeActions).Get("blog/save")
	assert.False(t, ok)
}

func TestEngine_FailOpen(t *testing.T) {
	t.Parallel()

	engine, repo := newTestEngine(t)
	repo.MustSaveRole(model.DefaultRole, "[]", "{this is not json")

	// ルールブロブが壊れていてもリクエストは通る
	req := &RequestInfo{User: mustUserInfo("alice", false)}
	assert.True(t, engine.AuthorizeAction(req, "comment/save"))
	assert.True(t, engine.AuthorizePage(req, []string{"blog", "edit"}).Allowed())
}
