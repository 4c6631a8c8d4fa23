package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-farmdesk/pkg/orchestrator"
	"github.com/goliatone/go-farmdesk/pkg/render"
	"github.com/goliatone/go-farmdesk/pkg/renderers/text"
)

func newListCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list <page>",
		Short: "Print the records of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer := text.New(text.WithFormat(text.Format(format)))
			registry := render.NewRegistry()
			registry.MustRegister(renderer)

			orch, err := a.orchestrator(a.backend(),
				orchestrator.WithRegistry(registry),
				orchestrator.WithDefaultRenderer(renderer.Name()),
			)
			if err != nil {
				return err
			}
			out, err := orch.Generate(cmd.Context(), orchestrator.Request{Page: args[0]})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(text.FormatTable), "output format (table|markdown|csv)")
	return cmd
}
