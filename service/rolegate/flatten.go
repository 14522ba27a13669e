package rolegate

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/traPtitech/rolegate/model"
	"github.com/traPtitech/rolegate/repository"
)

// ErrExtendsCycle ロールの継承グラフに循環があります
var ErrExtendsCycle = errors.New("role extends cycle")

// flattener ロールごとのフラット化済みパーミッションツリーのキャッシュ
//
// 継承グラフを深さ優先でマージし、結果をロール名でメモ化します。
// 同一ロールのフラット化はロールストアに対して純粋なため、
// 並行アクセスはロック1本で直列化すれば十分です。
type flattener struct {
	repo   repository.RoleRepository
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]PermissionTree
}

func newFlattener(repo repository.RoleRepository, logger *zap.Logger) *flattener {
	return &flattener{
		repo:   repo,
		logger: logger,
		cache:  make(map[string]PermissionTree),
	}
}

// flatten ロールのフラット化済みパーミッションツリーを返します
func (f *flattener) flatten(role *model.Role) (PermissionTree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolve(role, map[string]struct{}{})
}

// invalidate メモ化済みの結果を全て破棄します
func (f *flattener) invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = make(map[string]PermissionTree)
}

// resolve 継承先を再帰的に解決してからロール自身のルールを上書きマージします
//
// visitedは解決中のロール名の集合で、継承グラフの循環を検出します。
func (f *flattener) resolve(role *model.Role, visited map[string]struct{}) (PermissionTree, error) {
	if tree, ok := f.cache[role.Name]; ok {
		return tree, nil
	}
	if _, ok := visited[role.Name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrExtendsCycle, role.Name)
	}
	visited[role.Name] = struct{}{}
	defer delete(visited, role.Name)

	result := PermissionTree{}
	for _, name := range role.ExtendsList() {
		extended, err := f.repo.GetRoleByName(name)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// 未解決の継承先はルール無しとして読み飛ばす
				f.logger.Debug("extended role not found", zap.String("role", role.Name), zap.String("extends", name))
				continue
			}
			return nil, err
		}
		tree, err := f.resolve(extended, visited)
		if err != nil {
			return nil, err
		}
		result.Merge(tree)
	}

	own, err := DecodePermissions(role.Permissions)
	if err != nil {
		// 壊れたルールブロブはルール無しとして扱う
		f.logger.Warn("failed to decode role permissions", zap.String("role", role.Name), zap.Error(err))
		own = PermissionTree{}
	}
	result.Merge(own)

	f.cache[role.Name] = result
	return result, nil
}
