package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/leandro-lugaresi/hub"
	"github.com/motoki317/sc"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/traPtitech/rolegate/migration"
	"github.com/traPtitech/rolegate/model"
	"github.com/traPtitech/rolegate/repository"
)

// Repository リポジトリ実装
type Repository struct {
	db     *gorm.DB
	hub    *hub.Hub
	logger *zap.Logger
	roles  *sc.Cache[string, *model.Role]
}

// NewGormRepository リポジトリ実装を初期化して生成します
func NewGormRepository(db *gorm.DB, hub *hub.Hub, logger *zap.Logger) (repository.Repository, error) {
	repo := &Repository{
		db:     db,
		hub:    hub,
		logger: logger.Named("repository"),
	}
	repo.roles = sc.NewMust(repo.getRole, 5*time.Minute, 10*time.Minute)
	return repo, nil
}

// Sync implements Repository interface.
func (repo *Repository) Sync() error {
	return migration.Migrate(repo.db)
}

func (repo *Repository) getRole(_ context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := repo.db.First(&role, &model.Role{Name: name}).Error; err != nil {
		return nil, convertError(err)
	}
	return &role, nil
}

func convertError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}
