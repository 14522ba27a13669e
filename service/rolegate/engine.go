package rolegate

import (
	"errors"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/traPtitech/rolegate/model"
	"github.com/traPtitech/rolegate/repository"
)

// Engine ロールベースの権限エンジン
//
// ユーザーをロールに解決し、継承グラフをフラット化したパーミッションルールを
// 6つの適用面 (actions, pages, views, menus, hooks, events) で解釈します。
// フラット化結果は内部にメモ化されるため、ロールストアへの書き込み後は
// InvalidateCacheを呼ぶ必要があります。
type Engine struct {
	repo   Repository
	logger *zap.Logger
	flat   *flattener
}

// Repository エンジンが必要とするリポジトリ機能
type Repository interface {
	repository.RoleRepository
	repository.AssignmentRepository
}

// NewEngine 権限エンジンを生成します
func NewEngine(repo Repository, logger *zap.Logger) *Engine {
	logger = logger.Named("rolegate")
	return &Engine{
		repo:   repo,
		logger: logger,
		flat:   newFlattener(repo, logger),
	}
}

// InvalidateCache フラット化済みパーミッションのキャッシュを破棄します
func (e *Engine) InvalidateCache() {
	e.flat.invalidate()
}

// ComputedRoleName 明示的な割り当てが無い場合に適用されるロール名を返します
func ComputedRoleName(user *model.UserInfo) string {
	switch {
	case user == nil:
		return model.VisitorRole
	case user.Admin:
		return model.AdminRole
	default:
		return model.DefaultRole
	}
}

// RoleOf ユーザーのロールを解決します
//
// 明示的な割り当てがあればそのロールを、無ければユーザーの属性から
// 計算された予約ロール (visitor/admin/default) を返します。
func (e *Engine) RoleOf(user *model.UserInfo) (*model.Role, error) {
	if user != nil {
		name, err := e.repo.GetUserRoleName(user.ID)
		switch {
		case err == nil:
			role, err := e.repo.GetRoleByName(name)
			if err == nil {
				return role, nil
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			// 割り当て先のロールが消えている場合は計算ロールへフォールバック
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}
	return e.repo.GetRoleByName(ComputedRoleName(user))
}

// HasRole ユーザーに指定した名前のロールが明示的に割り当てられているかどうか
func (e *Engine) HasRole(user *model.UserInfo, roleName string) (bool, error) {
	if user == nil {
		return false, nil
	}
	name, err := e.repo.GetUserRoleName(user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return name == roleName, nil
}

// SetRole ユーザーにロールを割り当てます
//
// 現在解決されるロールと同じ場合は何も行わず、changed=falseを返します。
// 予約ロールへの割り当ては明示的な割り当ての解除のみを行います。
func (e *Engine) SetRole(user *model.UserInfo, role *model.Role) (changed bool, err error) {
	if user == nil || role == nil {
		return false, repository.ErrNilID
	}

	current, err := e.RoleOf(user)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	if current != nil && current.Name == role.Name {
		return false, nil
	}

	if err := e.repo.ClearUserRole(user.ID); err != nil {
		return false, err
	}
	if model.IsReservedRoleName(role.Name) {
		// 予約ロールは暗黙に解決されるため永続化しない
		return true, nil
	}
	if err := e.repo.SetUserRole(user.ID, role.Name); err != nil {
		return false, err
	}
	return true, nil
}

// AssignRoleByName 名前で指定したロールをユーザーに割り当てます
//
// ユーザー作成時のロール指定に使用します。空の名前および存在しない
// ロール名は黙って読み飛ばし、割り当てを行わずにchanged=falseを返します。
func (e *Engine) AssignRoleByName(user *model.UserInfo, roleName string) (changed bool, err error) {
	if len(roleName) == 0 {
		return false, nil
	}
	role, err := e.repo.GetRoleByName(roleName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return e.SetRole(user, role)
}

// Selectable ユーザーに割り当て可能なロールの一覧を返します
//
// 予約ロールはユーザー属性から自動的に適用されるため含まれません。
func (e *Engine) Selectable() ([]*model.Role, error) {
	roles, err := e.repo.GetAllRoles()
	if err != nil {
		return nil, err
	}
	return lo.Reject(roles, func(r *model.Role, _ int) bool { return r.IsReserved() }), nil
}

// RoleMembers 指定したロールが明示的に割り当てられているユーザーのIDを返します
//
// 予約ロールのメンバーは割り当ての不在から計算されるため列挙できず、
// repository.ErrReservedを返します。
func (e *Engine) RoleMembers(roleName string) ([]uuid.UUID, error) {
	if model.IsReservedRoleName(roleName) {
		return nil, repository.ErrReserved
	}
	return e.repo.GetRoleMembers(roleName)
}

// UsersWithRole 与えられたユーザーのうち、指定したロールに解決されるものを返します
//
// 明示的な割り当てがあればそのロールを、無ければユーザーの属性から計算された
// 予約ロールを見ます。予約ロールのメンバーシップは割り当ての不在と属性の
// 述語で決まるため、この形の逆引きでのみ列挙できます。
func (e *Engine) UsersWithRole(users []*model.UserInfo, roleName string) ([]*model.UserInfo, error) {
	assignments, err := e.repo.ListAssignments()
	if err != nil {
		return nil, err
	}

	known := map[string]bool{}
	var result []*model.UserInfo
	for _, user := range users {
		name := ""
		if user != nil {
			if assigned, ok := assignments[user.ID]; ok {
				valid, checked := known[assigned]
				if !checked {
					_, err := e.repo.GetRoleByName(assigned)
					switch {
					case err == nil:
						valid = true
					case errors.Is(err, repository.ErrNotFound):
						valid = false
					default:
						return nil, err
					}
					known[assigned] = valid
				}
				if valid {
					name = assigned
				}
			}
		}
		if name == "" {
			name = ComputedRoleName(user)
		}
		if name == roleName {
			result = append(result, user)
		}
	}
	return result, nil
}

// Permissions ロールのフラット化済みパーミッションツリー全体を返します
//
// 返されるツリーは複製なので、呼び出し側が変更しても内部キャッシュには
// 影響しません。
func (e *Engine) Permissions(role *model.Role) (PermissionTree, error) {
	if role == nil {
		return nil, repository.ErrNilID
	}
	tree, err := e.flat.flatten(role)
	if err != nil {
		return nil, err
	}
	return tree.Clone(), nil
}

// PermissionsByType ロールのフラット化済みパーミッションのうち指定した種別の
// セクションを返します。セクションが無い場合はnilを返します
func (e *Engine) PermissionsByType(role *model.Role, pt PermissionType) (*RuleSet, error) {
	tree, err := e.Permissions(role)
	if err != nil {
		return nil, err
	}
	return tree.Section(pt), nil
}

// rulesFor 現在のリクエストのロールを解決し、指定した種別のルール集合を返します
//
// ロールが解決できない場合やフラット化に失敗した場合はnilを返します。
// 呼び出し側はnilを「適用されるルール無し」として扱います (フェイルオープン)。
func (e *Engine) rulesFor(req *RequestInfo, pt PermissionType) *RuleSet {
	var user *model.UserInfo
	if req != nil {
		user = req.User
	}
	role, err := e.RoleOf(user)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			e.logger.Warn("failed to resolve role", zap.Error(err))
		}
		return nil
	}
	tree, err := e.flat.flatten(role)
	if err != nil {
		e.logger.Warn("failed to flatten role permissions", zap.String("role", role.Name), zap.Error(err))
		return nil
	}
	return tree.Section(pt)
}

// roleOfQuiet RoleOfのログのみ版。動的パス置換用
func (e *Engine) roleOfQuiet(user *model.UserInfo) *model.Role {
	role, err := e.RoleOf(user)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			e.logger.Warn("failed to resolve role", zap.Error(err))
		}
		return nil
	}
	return role
}

// splitRuleKey "name::type"形式のルールキーを分解します
func splitRuleKey(key string) (name, typ string) {
	name, typ, _ = strings.Cut(key, "::")
	return
}

// warnMalformed ペイロード不足のルールを記録します。ルール自体は無視されます
func (e *Engine) warnMalformed(pt PermissionType, key string) {
	e.logger.Warn("malformed permission rule; treating as allow",
		zap.String("type", string(pt)),
		zap.String("key", key),
	)
}
