// Package cli implements mapsctl, the maintenance command line for a mapsdb database.
package cli

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/localnerve/mapsdb/internal/config"
	"github.com/localnerve/mapsdb/internal/database"
	"github.com/localnerve/mapsdb/internal/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// session is the state shared by the subcommands of one invocation
type session struct {
	envFile    string
	jsonOutput bool

	cfg *config.Config
	db  *gorm.DB
}

// NewRootCmd builds the mapsctl command tree
func NewRootCmd() *cobra.Command {
	s := &session{}
	root := &cobra.Command{
		Use:   "mapsctl",
		Short: "mapsctl - maintenance commands for the mapsdb database",
		Long: `mapsctl runs maintenance tasks against the database configured in the
environment (DB_TYPE, DB_HOST, DB_DATABASE, ...), optionally loaded from an .env file.`,
		SilenceErrors:      true,
		SilenceUsage:       true,
		PersistentPreRunE:  s.open,
		PersistentPostRunE: s.close,
	}
	root.PersistentFlags().StringVarP(&s.envFile, "env-file", "f", "", "Path to an .env file to load first")
	root.PersistentFlags().BoolVarP(&s.jsonOutput, "json", "j", false, "Output in JSON format")

	root.AddCommand(
		newMigrateCmd(s),
		newSeedColorsCmd(s),
		newSyncProjectUsersCmd(s),
		newCreateAdminCmd(s),
		newIssueTokenCmd(s),
	)
	return root
}

func (s *session) open(cmd *cobra.Command, _ []string) error {
	if s.envFile != "" {
		if err := godotenv.Load(s.envFile); err != nil {
			return errors.Wrapf(err, "load %s", s.envFile)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console", Output: cmd.ErrOrStderr()})

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	s.cfg, s.db = cfg, db
	return nil
}

func (s *session) close(*cobra.Command, []string) error {
	if s.db == nil {
		return nil
	}
	err := database.Close(s.db)
	s.db = nil
	return err
}

// migrated runs the schema migrations every data command depends on
func (s *session) migrated() (*gorm.DB, error) {
	if err := database.AutoMigrate(s.db); err != nil {
		return nil, errors.Wrap(err, "migrate")
	}
	return s.db, nil
}

// print writes v as indented JSON with --json, or the text line otherwise
func (s *session) print(w io.Writer, v any, format string, args ...any) error {
	if !s.jsonOutput {
		_, err := fmt.Fprintf(w, format+"\n", args...)
		return err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
