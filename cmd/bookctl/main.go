// bookctl 运维命令行：导入图书、调整用户角色、执行数据库迁移
//
//	bookctl migrate
//	bookctl seed --file books.yaml
//	bookctl grant-role --email admin@example.com --role admin
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xiebiao/bookworld/internal/infrastructure/config"
	"github.com/xiebiao/bookworld/pkg/logger"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bookctl",
		Short:         "BookWorld 运维工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			if err := logger.Init(c.Log); err != nil {
				return fmt.Errorf("初始化日志失败: %w", err)
			}
			cfg = c
			return nil
		},
	}

	root.AddCommand(newMigrateCmd(), newSeedCmd(), newGrantRoleCmd())
	return root
}
