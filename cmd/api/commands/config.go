package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/therapy-scheduler/internal/config"
	"github.com/BruksfildServices01/therapy-scheduler/internal/domain/conflict"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspeciona a configuração carregada",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Lista problemas da configuração (sai com erro se houver algum grave)",
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	problems := cfg.Validate()
	out := cmd.OutOrStdout()

	if len(problems) == 0 {
		fmt.Fprintln(out, "config ok")
		return nil
	}

	for _, p := range problems {
		fmt.Fprintf(out, "[%s] %s: %s\n", p.Severity, p.Field, p.Message)
	}

	if conflict.HasErrors(problems) {
		return errors.New("invalid configuration")
	}
	return nil
}
