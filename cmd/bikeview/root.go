package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Carmen-Shannon/bikeview/config"
	"github.com/Carmen-Shannon/bikeview/parts"
	"github.com/spf13/cobra"
)

// app carries the state shared by every subcommand once the root flags are parsed.
type app struct {
	logLevel    string
	profile     bool
	configPath  string
	catalogPath string

	logger  *slog.Logger
	cfg     config.Config
	catalog *parts.Catalog
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "bikeview",
		Short: "Interactive 3D bicycle parts viewer",
		Long: `bikeview - Interactive 3D bicycle parts viewer

Shows a bicycle model with a floating label per part. Clicking a label highlights
the part and opens its info panel. Labels fade when they crowd each other.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.BoolVar(&a.profile, "profile", false, "Log frame and memory statistics")
	flags.StringVar(&a.configPath, "config", "", "Path to a TOML config file")
	flags.StringVar(&a.catalogPath, "catalog", "", "Path to a YAML part catalog (overrides the config)")

	cmd.AddCommand(
		newViewCommand(a),
		newPartsCommand(a),
		newInspectCommand(a),
		newProjectCommand(a),
	)
	return cmd
}

// setup builds the logger and loads the config and catalog.
func (a *app) setup(logOut io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(a.logLevel))); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", a.logLevel, err)
	}
	a.logger = slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	a.cfg = config.Default()
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	path := a.catalogPath
	if path == "" {
		path = a.cfg.Assets.Catalog
	}
	if path == "" {
		a.catalog = parts.DefaultCatalog()
		return nil
	}
	catalog, err := parts.LoadCatalog(path)
	if err != nil {
		return err
	}
	a.logger.Debug("loaded catalog", slog.String("path", path), slog.Int("parts", catalog.Len()))
	a.catalog = catalog
	return nil
}
