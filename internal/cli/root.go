package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/botline/internal/bots"
	"github.com/shaiso/botline/internal/config"
)

// ErrNoModule — не задан модуль бота (ни флагом, ни в runtime).
var ErrNoModule = errors.New("bot module is not set")

// NewRootCmd собирает корневую команду botline.
func NewRootCmd(version string) *cobra.Command {
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "botline",
		Short:         "botline — queue-driven bots",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	outputFn := func(cmd *cobra.Command) *Output {
		return NewOutput(jsonOutput, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	rootCmd.AddCommand(
		NewRunCmd(outputFn),
		NewServeCmd(),
		NewModulesCmd(outputFn),
	)

	return rootCmd
}

// NewModulesCmd выводит встроенные модули.
func NewModulesCmd(outputFn func(cmd *cobra.Command) *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List built-in bot modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := bots.NewRegistry()
			// для списка подключение не нужно
			registry.RegisterPostgres(nil)

			modules := registry.Modules()
			rows := make([][]string, len(modules))
			for i, m := range modules {
				rows[i] = []string{m}
			}

			outputFn(cmd).Print([]string{"MODULE"}, rows, modules)
			return nil
		},
	}
}

// resolveModule — модуль из флага или из runtime-параметра module.
func resolveModule(settings *config.Settings, botID, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}

	module := settings.Runtime.Params(botID).String(config.ParamModule, "")
	if module == "" {
		return "", fmt.Errorf("bot %s: %w", botID, ErrNoModule)
	}
	return module, nil
}
