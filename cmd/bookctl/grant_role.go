package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiebiao/bookworld/internal/domain/user"
	"github.com/xiebiao/bookworld/internal/infrastructure/persistence"
	"github.com/xiebiao/bookworld/pkg/logger"
)

func newGrantRoleCmd() *cobra.Command {
	var email, roleName string

	cmd := &cobra.Command{
		Use:   "grant-role",
		Short: "修改用户角色",
		RunE: func(cmd *cobra.Command, args []string) error {
			role, ok := user.ParseRole(roleName)
			if !ok {
				return fmt.Errorf("无效的角色: %q", roleName)
			}

			repos, err := persistence.New(cfg)
			if err != nil {
				return err
			}
			defer repos.Close()

			u, err := repos.Users.FindByEmail(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("查找用户%s失败: %w", email, err)
			}

			from := u.Role
			u.ChangeRole(role, time.Now())
			if err := repos.Users.Update(cmd.Context(), u); err != nil {
				return fmt.Errorf("更新角色失败: %w", err)
			}

			logger.Info("用户角色已修改", map[string]interface{}{
				"user_id": u.ID,
				"from":    string(from),
				"to":      string(role),
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "用户邮箱")
	cmd.Flags().StringVar(&roleName, "role", "", "admin | developer | moderator | user")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
