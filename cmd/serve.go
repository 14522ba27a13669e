package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/leandro-lugaresi/hub"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/traPtitech/rolegate/event"
	repogorm "github.com/traPtitech/rolegate/repository/gorm"
	"github.com/traPtitech/rolegate/router"
	"github.com/traPtitech/rolegate/service/rolegate"
)

// serveCommand サーバー起動コマンド
func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve rolegate API",
		Run: func(cmd *cobra.Command, args []string) {
			// Logger
			logger := getLogger()
			defer logger.Sync()

			logger.Info(fmt.Sprintf("rolegate %s (revision %s)", Version, Revision))

			// Message Hub
			h := hub.New()

			// Database
			logger.Info("connecting database...")
			engine, err := c.getDatabase(logger)
			if err != nil {
				logger.Fatal("failed to connect database", zap.Error(err))
			}
			db, err := engine.DB()
			if err != nil {
				logger.Fatal("failed to get *sql.DB", zap.Error(err))
			}
			defer db.Close()
			logger.Info("database connection was established")

			// Repository
			repo, err := repogorm.NewGormRepository(engine, h, logger)
			if err != nil {
				logger.Fatal("failed to initialize repository", zap.Error(err))
			}
			if err := repo.Sync(); err != nil {
				logger.Fatal("failed to sync repository", zap.Error(err))
			}

			// ロール設定の同期
			if len(c.RolesConfig) > 0 {
				f, err := os.Open(c.RolesConfig)
				if err != nil {
					logger.Fatal("failed to open roles config", zap.Error(err))
				}
				config, err := rolegate.LoadRolesConfig(f)
				f.Close()
				if err != nil {
					logger.Fatal("failed to load roles config", zap.Error(err))
				}
				if _, err := rolegate.NewSynchronizer(repo, logger).Sync(config); err != nil {
					logger.Fatal("failed to sync roles config", zap.Error(err))
				}
			}

			// Engine
			gate := rolegate.NewEngine(repo, logger)

			// ロールの変更でフラット化キャッシュを破棄する
			go func() {
				sub := h.Subscribe(10, event.RoleUpdated, event.RoleDeleted)
				for range sub.Receiver {
					gate.InvalidateCache()
				}
			}()

			// Router
			e := echo.New()
			e.HideBanner = true
			e.HidePort = true
			router.NewRouter(repo, gate, logger).Setup(e)

			go func() {
				if err := e.Start(fmt.Sprintf(":%d", c.Port)); err != nil {
					logger.Info("shutting down the server")
				}
			}()

			logger.Info("rolegate started", zap.Int("port", c.Port))
			waitSIGINT()
			logger.Info("rolegate shutting down...")

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := e.Shutdown(ctx); err != nil {
				logger.Warn("abnormal shutdown", zap.Error(err))
			}
			logger.Info("rolegate shutdown")
		},
	}
}

func waitSIGINT() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
}
