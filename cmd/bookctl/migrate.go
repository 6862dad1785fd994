package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiebiao/bookworld/internal/infrastructure/config"
	"github.com/xiebiao/bookworld/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookworld/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "创建或更新MySQL表结构",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Storage.Driver != config.DriverMySQL {
				return fmt.Errorf("当前存储后端为%q，无需迁移", cfg.Storage.Driver)
			}

			db, err := mysql.NewDB(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := mysql.AutoMigrate(db); err != nil {
				return fmt.Errorf("数据库迁移失败: %w", err)
			}
			logger.Info("数据库迁移完成", map[string]interface{}{"dbname": cfg.Database.DBName})
			return nil
		},
	}
}
