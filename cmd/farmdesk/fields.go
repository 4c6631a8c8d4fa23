package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-farmdesk"
	pkgopenapi "github.com/goliatone/go-farmdesk/pkg/openapi"
)

func newFieldsCmd(a *app) *cobra.Command {
	var (
		contract string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "fields <operation>",
		Short: "Derive the field schema of an OpenAPI operation",
		Long: `Derive the field schema of an OpenAPI operation's request body, using the
x-farmdesk hints for labels, order, field types and option sources. Without
--openapi the bundled farm API contract is read.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := farmdesk.ContractSource()
			if contract != "" {
				source = pkgopenapi.SourceFromFile(contract)
			}
			fields, err := farmdesk.NewOrchestrator().FieldsFromOpenAPI(cmd.Context(), source, args[0])
			if err != nil {
				return err
			}
			a.logger.Debug("fields derived", zap.String("source", source.Location()), zap.Int("count", len(fields)))

			var out []byte
			switch format {
			case "json":
				out, err = json.MarshalIndent(fields, "", "  ")
				if err == nil {
					out = append(out, '\n')
				}
			case "yaml":
				out, err = yaml.Marshal(fields)
			default:
				return fmt.Errorf("unknown format %q (json|yaml)", format)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&contract, "openapi", "", "OpenAPI document (default: bundled contract)")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (json|yaml)")
	return cmd
}
