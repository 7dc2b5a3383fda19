package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/audit"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/domain"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/profile"
)

var grantAdminCmd = &cobra.Command{
	Use:   "grant-admin <user-id>",
	Short: "Give a profile the admin role",
	Long:  `The user must have signed in once so that their profile exists.`,
	Args:  userIDArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRole(cmd.Context(), args[0], domain.RoleAdmin)
	},
}

var revokeAdminCmd = &cobra.Command{
	Use:   "revoke-admin <user-id>",
	Short: "Return a profile to the user role",
	Args:  userIDArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRole(cmd.Context(), args[0], domain.RoleUser)
	},
}

func userIDArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	if _, err := uuid.Parse(args[0]); err != nil {
		return fmt.Errorf("user id %q is not a uuid", args[0])
	}
	return nil
}

func setRole(ctx context.Context, userID, role string) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	err = profile.NewRepository(pool).SetRole(ctx, userID, role)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no profile for %s; the user has to sign in first", userID)
	}
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}

	if err := audit.NewLog(pool).Write(ctx, audit.Entry{
		Action:     audit.ActionRoleChange,
		EntityType: "profile",
		EntityID:   audit.Ptr(userID),
		Metadata:   map[string]any{"role": role, "via": "cli"},
	}); err != nil {
		logger.Warn("audit write failed", zap.Error(err))
	}

	logger.Info("role updated", zap.String("user_id", userID), zap.String("role", role))
	return nil
}
