package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stemsi/paxcalc-backend/internal/config"
	"github.com/stemsi/paxcalc-backend/internal/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		migrationDir string
		m            *migrate.Migrate
		log          zerolog.Logger
	)

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply the paxcalc schema migrations",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log = logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is not set")
			}

			var err error
			m, err = migrate.New("file://"+migrationDir, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("initialize migrations: %w", err)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			srcErr, dbErr := m.Close()
			return errors.Join(srcErr, dbErr)
		},
	}
	root.PersistentFlags().StringVar(&migrationDir, "path", "migrations", "path to migration files")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := ignoreNoChange(m.Up()); err != nil {
					return fmt.Errorf("up: %w", err)
				}
				logVersion(log, m, "Migrated up")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := ignoreNoChange(m.Down()); err != nil {
					return fmt.Errorf("down: %w", err)
				}
				log.Info().Msg("Migrated down")
				return nil
			},
		},
		&cobra.Command{
			Use:   "steps <n>",
			Short: "Apply n migrations, or roll back when n is negative",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				if err := ignoreNoChange(m.Steps(n)); err != nil {
					return fmt.Errorf("steps: %w", err)
				}
				logVersion(log, m, "Migrated steps")
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				version, dirty, err := m.Version()
				if errors.Is(err, migrate.ErrNilVersion) {
					fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
					return nil
				}
				if err != nil {
					return fmt.Errorf("version: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d, dirty %t\n", version, dirty)
				return nil
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				if err := m.Force(v); err != nil {
					return fmt.Errorf("force: %w", err)
				}
				log.Warn().Int("version", v).Msg("Forced schema version")
				return nil
			},
		},
	)
	return root
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func logVersion(log zerolog.Logger, m *migrate.Migrate, msg string) {
	version, dirty, err := m.Version()
	if err != nil {
		log.Info().Msg(msg)
		return
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg(msg)
}
