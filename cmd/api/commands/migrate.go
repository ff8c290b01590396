package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/therapy-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/therapy-scheduler/internal/db"
	"github.com/BruksfildServices01/therapy-scheduler/internal/telemetry"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Cria tabelas, índices e a constraint de não sobreposição",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	log := telemetry.NewLogger(cfg.Env, cfg.LogLevel)

	db, err := dbpkg.Open(cfg, log)
	if err != nil {
		return err
	}

	if err := dbpkg.Migrate(cmd.Context(), db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	log.Info().Msg("migrations applied")
	return nil
}
