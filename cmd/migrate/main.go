// AngelaMos | 2026
// main.go

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/talentmarket/internal/config"
	"github.com/carterperez-dev/talentmarket/migrations"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	open := func() (*migrate.Migrate, error) {
		if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
			return nil, err
		}

		db, err := config.LoadDatabase(configPath)
		if err != nil {
			return nil, err
		}

		src, err := iofs.New(migrations.FS, ".")
		if err != nil {
			return nil, fmt.Errorf("open embedded migrations: %w", err)
		}

		m, err := migrate.NewWithSourceInstance("iofs", src, driverURL(db.URL))
		if err != nil {
			return nil, fmt.Errorf("init migrate: %w", err)
		}
		return m, nil
	}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply the talentmarket database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrate(open, func(m *migrate.Migrate) error {
					return ignoreNoChange(m.Up())
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrate(open, func(m *migrate.Migrate) error {
					return m.Steps(-1)
				})
			},
		},
		&cobra.Command{
			Use:   "goto VERSION",
			Short: "Migrate up or down to VERSION",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return withMigrate(open, func(m *migrate.Migrate) error {
					return ignoreNoChange(m.Migrate(uint(version)))
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrate(open, func(m *migrate.Migrate) error {
					version, dirty, err := m.Version()
					if errors.Is(err, migrate.ErrNilVersion) {
						fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
						return nil
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
					return nil
				})
			},
		},
	)

	return root
}

func withMigrate(
	open func() (*migrate.Migrate, error),
	fn func(*migrate.Migrate) error,
) error {
	m, err := open()
	if err != nil {
		return err
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			slog.Warn("close migrate", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	return fn(m)
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("schema already up to date")
		return nil
	}
	return err
}

// driverURL points a postgres URL at the pgx v5 migrate driver.
func driverURL(databaseURL string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, scheme)
		}
	}
	return databaseURL
}
