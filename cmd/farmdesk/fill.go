package main

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-farmdesk/internal/farm"
	"github.com/goliatone/go-farmdesk/pkg/form"
	"github.com/goliatone/go-farmdesk/pkg/model"
	"github.com/goliatone/go-farmdesk/pkg/orchestrator"
	"github.com/goliatone/go-farmdesk/pkg/pages"
	"github.com/goliatone/go-farmdesk/pkg/renderers/tui"
)

func newFillCmd(a *app) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "fill <page>",
		Short: "Create or edit a record through terminal prompts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			service := a.backend()
			orch, err := a.orchestrator(service)
			if err != nil {
				return err
			}
			page, err := orch.Page(args[0])
			if err != nil {
				return err
			}

			cfg := orchestrator.FormConfig{Mode: form.ModeCreate}
			if id != "" {
				record, err := findRecord(ctx, service, page, id)
				if err != nil {
					return err
				}
				cfg.Mode, cfg.Record = form.ModeEdit, record
			}

			var saved map[string]any
			cfg.OnSubmit = func(ctx context.Context, values model.Values) error {
				var err error
				saved, err = service.Save(ctx, page, id, values)
				return err
			}
			f, err := orch.NewForm(ctx, page, cfg)
			if err != nil {
				return err
			}
			renderer, err := tui.New(tui.WithPromptDriver(a.prompts), tui.WithOutput(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			if err := renderer.Fill(ctx, f); err != nil {
				return err
			}
			a.logger.Info("record saved", zap.String("page", page.Name), zap.String("id", id))

			out, err := json.MarshalIndent(saved, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "id of the record to edit (default: create a new one)")
	return cmd
}

func findRecord(ctx context.Context, service *farm.Service, page pages.Page, id string) (map[string]any, error) {
	records, err := service.Records(ctx, page)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if record.ID() == id {
			return record, nil
		}
	}
	return nil, fmt.Errorf("%s: record %q not found", page.Name, id)
}
