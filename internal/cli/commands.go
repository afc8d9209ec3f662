package cli

import (
	"time"

	"github.com/localnerve/mapsdb/internal/middleware"
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/services"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newMigrateCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := s.migrated(); err != nil {
				return err
			}
			return s.print(cmd.OutOrStdout(), map[string]string{"result": "migrated"}, "Schema is up to date")
		},
	}
}

func newSeedColorsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-colors",
		Short: "Insert the standard color keys and TCG themes",
		Long: `Insert the standard color keys and TCG themes. Rows that already exist,
matched by key number and theme key, are left unchanged, so the command can be rerun.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := s.migrated()
			if err != nil {
				return err
			}
			result, err := services.SeedReferenceData(db, nil)
			if err != nil {
				return err
			}
			return s.print(cmd.OutOrStdout(), result,
				"Color keys: %d created, %d already present\nTCG themes: %d created, %d already present",
				result.ColorKeysCreated, result.ColorKeysSkipped, result.ThemesCreated, result.ThemesSkipped)
		},
	}
}

func newSyncProjectUsersCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-project-users",
		Short: "Make every user a member of every project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := s.migrated()
			if err != nil {
				return err
			}
			projects, added, err := services.SyncProjectUsers(db)
			if err != nil {
				return err
			}
			return s.print(cmd.OutOrStdout(), map[string]int64{"projects": int64(projects), "added": added},
				"Synchronized %d projects, %d memberships added", projects, added)
		},
	}
}

func newCreateAdminCmd(s *session) *cobra.Command {
	var in services.RegisterInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "List the staff users, creating one when there are none",
		Example: `  # Create the first administrator
  mapsctl create-admin --username admin --email admin@example.com --password 'long secret'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := s.migrated()
			if err != nil {
				return err
			}
			staff, created, err := services.EnsureAdmin(db, in)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(staff))
			for _, u := range staff {
				names = append(names, u.Username)
			}
			verb := "Existing"
			if created {
				verb = "Created"
			}
			return s.print(cmd.OutOrStdout(), map[string]any{"created": created, "staff": names},
				"%s staff users: %v", verb, names)
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "admin", "Username of the staff user to create")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email of the staff user to create")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password of the staff user to create")
	return cmd
}

func newIssueTokenCmd(s *session) *cobra.Command {
	var username string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Sign a bearer token for a user, for local development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := s.migrated()
			if err != nil {
				return err
			}
			var user models.User
			res := db.Where("username = ?", username).Limit(1).Find(&user)
			if res.Error != nil {
				return errors.Wrap(res.Error, "find user")
			}
			if res.RowsAffected == 0 {
				return errors.Errorf("no user named %q", username)
			}
			token, err := middleware.IssueToken(middleware.AuthConfig{
				Secret: []byte(s.cfg.JWTSecret),
				Issuer: s.cfg.JWTIssuer,
			}, user.ID, ttl)
			if err != nil {
				return err
			}
			return s.print(cmd.OutOrStdout(), map[string]string{"user_id": user.ID, "token": token}, "%s", token)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "User the token is issued for")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
