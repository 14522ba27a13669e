package rolegate

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/traPtitech/rolegate/model"
	"github.com/traPtitech/rolegate/repository"
)

const settingKeyConfigHash = "roles_config_hash"

// Synchronizer 宣言的なロール設定とロールストアの同期
//
// 設定全体のハッシュをsettingsに保存し、変化した場合のみストアを更新します。
type Synchronizer struct {
	repo   SyncRepository
	logger *zap.Logger
}

// SyncRepository Synchronizerが必要とするリポジトリ機能
type SyncRepository interface {
	repository.RoleRepository
	repository.SettingRepository
}

// NewSynchronizer Synchronizerを生成します
func NewSynchronizer(repo SyncRepository, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		repo:   repo,
		logger: logger.Named("rolesync"),
	}
}

// Sync 設定をロールストアへ反映します
//
// 設定に含まれるロールは作成・更新され、設定にもストアの予約ロールにも
// 含まれないロールは削除されます。設定のハッシュが前回と同じ場合は
// 何も行いません。更新があった場合trueを返します。
func (s *Synchronizer) Sync(config RolesConfig) (bool, error) {
	hash, err := hashConfig(config)
	if err != nil {
		return false, err
	}

	stored, err := s.repo.GetSetting(settingKeyConfigHash)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	if stored == hash {
		return false, nil
	}

	if err := s.applyConfig(config); err != nil {
		return false, err
	}
	if err := s.repo.SetSetting(settingKeyConfigHash, hash); err != nil {
		return false, err
	}
	s.logger.Info("roles config synchronized", zap.Int("roles", len(config)))
	return true, nil
}

func (s *Synchronizer) applyConfig(config RolesConfig) error {
	for name, def := range config {
		permissions, err := EncodePermissions(def.Permissions)
		if err != nil {
			return err
		}
		role := &model.Role{
			Name:        name,
			Title:       def.Title,
			Permissions: permissions,
		}
		if err := role.SetExtendsList(def.Extends); err != nil {
			return err
		}
		if err := s.repo.SaveRole(role); err != nil {
			return err
		}
	}

	roles, err := s.repo.GetAllRoles()
	if err != nil {
		return err
	}
	for _, role := range roles {
		if role.IsReserved() {
			continue
		}
		if _, ok := config[role.Name]; ok {
			continue
		}
		if err := s.repo.DeleteRole(role.Name); err != nil {
			return err
		}
		s.logger.Info("removed role absent from config", zap.String("role", role.Name))
	}
	return nil
}

// hashConfig 設定の正規化したシリアライズ結果のSHA-1を返します
//
// ロール名をソートして並べるため、マップの列挙順に依存しません。
func hashConfig(config RolesConfig) (string, error) {
	names := make([]string, 0, len(config))
	for name := range config {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha1.New()
	for _, name := range names {
		def := config[name]
		b, err := json.Marshal(def)
		if err != nil {
			return "", err
		}
		h.Write([]byte(name))
		h.Write(b)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
