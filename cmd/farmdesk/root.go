package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-farmdesk"
	"github.com/goliatone/go-farmdesk/internal/config"
	"github.com/goliatone/go-farmdesk/internal/farm"
	"github.com/goliatone/go-farmdesk/internal/logging"
	"github.com/goliatone/go-farmdesk/pkg/api"
	"github.com/goliatone/go-farmdesk/pkg/orchestrator"
	"github.com/goliatone/go-farmdesk/pkg/pages"
	"github.com/goliatone/go-farmdesk/pkg/render"
	"github.com/goliatone/go-farmdesk/pkg/renderers/tui"
)

// Version is set at build time.
var Version = "dev"

// app carries the state shared by subcommands once flags are parsed.
type app struct {
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger

	// prompts replaces the survey driver of fill; tests script it.
	prompts tui.PromptDriver
}

func newRootCmd() *cobra.Command {
	return (&app{}).command()
}

func (a *app) command() *cobra.Command {
	a.cfg, a.logger = config.Default(), zap.NewNop()

	root := &cobra.Command{
		Use:     "farmdesk",
		Short:   "Farm management pages for the feed and milk production API",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "YAML config file")
	flags.String("api.base-url", config.DefaultBaseURL, "base URL of the farm API")
	flags.Duration("api.timeout", config.DefaultTimeout, "timeout of each API request")
	flags.String("pages.dir", "", "directory of page definitions (default: embedded pages)")
	flags.String("ui.theme", "", "theme name (default: "+render.DefaultThemeName+")")
	flags.String("ui.variant", "", "theme variant")
	flags.String("log.level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
	flags.String("log.format", config.DefaultLogFormat, "log format (console|json)")

	_ = root.RegisterFlagCompletionFunc("log.format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"console", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newFillCmd(a),
		newPagesCmd(a),
		newFieldsCmd(a),
		newLintCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, _, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) pageStore() (*pages.Store, error) {
	if a.cfg.Pages.Dir == "" {
		return pages.Load(nil)
	}
	return pages.LoadDir(a.cfg.Pages.Dir)
}

// backend builds the API client and the farm service on top of it.
func (a *app) backend() *farm.Service {
	client := api.NewClient(
		api.WithBaseURL(a.cfg.API.BaseURL),
		api.WithTimeout(a.cfg.API.Timeout),
		api.WithLogger(a.logger.Named("api")),
	)
	return farm.New(client, farm.WithLogger(a.logger.Named("farm")))
}

// orchestrator wires pages, the farm service and the bundled themes.
func (a *app) orchestrator(service *farm.Service, options ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	store, err := a.pageStore()
	if err != nil {
		return nil, err
	}
	themes, err := render.BuiltinThemes(a.cfg.UI.Theme, a.cfg.UI.Variant)
	if err != nil {
		return nil, fmt.Errorf("themes: %w", err)
	}
	options = append([]orchestrator.Option{
		orchestrator.WithPages(store),
		orchestrator.WithSource(service),
		orchestrator.WithThemeSelector(themes, a.cfg.UI.Theme, a.cfg.UI.Variant),
		orchestrator.WithLogger(a.logger),
	}, options...)
	return farmdesk.NewOrchestrator(options...), nil
}
