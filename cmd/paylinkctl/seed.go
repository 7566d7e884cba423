package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"paylink.dev/app/internal/modules/agents"
	"paylink.dev/app/internal/modules/brands"
	"paylink.dev/app/internal/schema"
)

type seedOptions struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
	BrandName     string
	BrandEmail    string
}

func seedCmd() *cobra.Command {
	opts := seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create an admin agent and a sample brand",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDB()
			if err != nil {
				return err
			}
			if err := schema.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			return seed(cmd.Context(), db, opts, func(format string, a ...any) {
				fmt.Fprintf(cmd.OutOrStdout(), format+"\n", a...)
			})
		},
	}

	cmd.Flags().StringVar(&opts.AdminName, "admin-name", "Admin", "admin display name")
	cmd.Flags().StringVar(&opts.AdminEmail, "admin-email", "admin@paylink.local", "admin email")
	cmd.Flags().StringVar(&opts.AdminPassword, "admin-password", "admin12345", "admin password")
	cmd.Flags().StringVar(&opts.BrandName, "brand", "Test Brand", "sample brand name")
	cmd.Flags().StringVar(&opts.BrandEmail, "brand-email", "", "sample brand lead email")
	return cmd
}

// seed is idempotent: an existing admin email or brand name is left alone.
func seed(ctx context.Context, db *gorm.DB, opts seedOptions, printf func(string, ...any)) error {
	if ctx == nil {
		ctx = context.Background()
	}

	agentSvc := agents.NewService(db)
	agentSvc.SetLogger(logger())
	a, err := agentSvc.Register(ctx, agents.RegisterInput{
		Name:     opts.AdminName,
		Email:    opts.AdminEmail,
		Password: opts.AdminPassword,
		Role:     agents.RoleAdmin,
	})
	switch {
	case errors.Is(err, agents.ErrEmailTaken):
		printf("• admin %s already exists", opts.AdminEmail)
	case err != nil:
		return fmt.Errorf("seed admin: %w", err)
	default:
		printf("✓ admin %s created (%s)", a.Email, a.ID)
	}

	var existing brands.Brand
	err = db.WithContext(ctx).Where("name = ?", opts.BrandName).First(&existing).Error
	if err == nil {
		printf("• brand %q already exists (%s)", existing.Name, existing.ID)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup brand: %w", err)
	}

	brandSvc := brands.NewService(db, nil)
	brandSvc.SetLogger(logger())
	b, err := brandSvc.Create(ctx, brands.Input{
		Name:        opts.BrandName,
		Description: "Sample brand for local testing",
		Email:       opts.BrandEmail,
	})
	if err != nil {
		return fmt.Errorf("seed brand: %w", err)
	}
	printf("✓ brand %q created (%s)", b.Name, b.ID)
	return nil
}
