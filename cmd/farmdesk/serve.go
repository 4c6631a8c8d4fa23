package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-farmdesk/internal/config"
	"github.com/goliatone/go-farmdesk/internal/web"
	"github.com/goliatone/go-farmdesk/pkg/orchestrator"
	"github.com/goliatone/go-farmdesk/pkg/render"
	"github.com/goliatone/go-farmdesk/pkg/renderers/vanilla"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pages over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			renderer, err := vanilla.New()
			if err != nil {
				return err
			}
			registry := render.NewRegistry()
			registry.MustRegister(renderer)

			service := a.backend()
			orch, err := a.orchestrator(service,
				orchestrator.WithRegistry(registry),
				orchestrator.WithDefaultRenderer(renderer.Name()),
			)
			if err != nil {
				return err
			}
			srv, err := web.New(orch, service, renderer, web.Config{
				Addr:          a.cfg.Server.Addr,
				SessionSecret: a.cfg.Server.SessionSecret,
				PagesDir:      a.cfg.Pages.Dir,
				Watch:         a.cfg.Pages.Watch,
				Logger:        a.logger.Named("web"),
			})
			if err != nil {
				return err
			}
			return srv.Serve(cmd.Context())
		},
	}
	flags := cmd.Flags()
	flags.String("server.addr", config.DefaultAddr, "listen address")
	flags.String("server.session-secret", "", "cookie signing secret (default: random per process)")
	flags.Bool("pages.watch", false, "reload page definitions when pages.dir changes")
	return cmd
}
