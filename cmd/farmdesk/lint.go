package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-farmdesk"
	"github.com/goliatone/go-farmdesk/internal/lint"
	pkgopenapi "github.com/goliatone/go-farmdesk/pkg/openapi"
)

func newLintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Check the x-farmdesk hints of OpenAPI documents",
		Long: `Check the x-farmdesk UI hints of OpenAPI documents: unknown keys, values of
the wrong kind, unknown field types and option sources that name no
collection. Without paths the bundled farm API contract is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := make([]pkgopenapi.Source, 0, len(args))
			for _, path := range args {
				sources = append(sources, pkgopenapi.SourceFromFile(path))
			}
			if len(sources) == 0 {
				sources = append(sources, farmdesk.ContractSource())
			}

			linter := lint.New()
			found := 0
			for _, source := range sources {
				operations, err := farmdesk.Operations(cmd.Context(), source)
				if err != nil {
					return fmt.Errorf("lint %w", err)
				}
				violations := linter.Operations(operations)
				a.logger.Debug("linted", zap.String("source", source.Location()), zap.Int("operations", len(operations)), zap.Int("violations", len(violations)))
				for _, v := range violations {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", source.Location(), v)
				}
				found += len(violations)
			}
			if found > 0 {
				return fmt.Errorf("%d violation(s)", found)
			}
			return nil
		},
	}
}
