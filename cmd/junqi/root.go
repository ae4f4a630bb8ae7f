package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gojunqi"
	"github.com/sandrolain/gojunqi/internal/config"
	"github.com/sandrolain/gojunqi/pkg/compiler"
	"github.com/sandrolain/gojunqi/pkg/ext"
	"github.com/sandrolain/gojunqi/pkg/functions"
)

// app carries state shared by the subcommands once the root command has
// loaded the configuration.
type app struct {
	configPath string
	cfg        config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "junqi",
		Short:         "Run junqi query trees against JSON or YAML records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.NewLogger(cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ./"+config.DefaultFile+" when present)")

	root.AddCommand(newRunCmd(a), newExtensionsCmd(a), newVersionCmd())
	return root
}

// extensions returns the definitions enabled by the configuration. No
// categories means all of them.
func (a *app) extensions() ([]functions.Def, error) {
	if len(a.cfg.Extensions) == 0 {
		return ext.All(), nil
	}
	var defs []functions.Def
	for _, name := range a.cfg.Extensions {
		d, err := ext.Category(name)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d...)
	}
	return defs, nil
}

func (a *app) compiler() (*compiler.Compiler, error) {
	defs, err := a.extensions()
	if err != nil {
		return nil, err
	}
	return compiler.New(
		compiler.WithFunctions(defs...),
		compiler.WithLogger(a.logger),
		compiler.WithDebug(a.cfg.Debug),
		compiler.WithCaching(a.cfg.CacheSize > 0),
		compiler.WithCacheSize(a.cfg.CacheSize),
	)
}

func newExtensionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extensions",
		Short: "List the registered extension functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.compiler()
			if err != nil {
				return err
			}
			reg := c.Functions()
			for _, name := range reg.Names() {
				def, _ := reg.Lookup(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", name, def.Arity())
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "junqi", gojunqi.Version())
			return nil
		},
	}
}
