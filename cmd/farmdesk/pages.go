package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-farmdesk/pkg/renderers/text"
)

func newPagesCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List the page definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.pageStore()
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Página", "Título", "Recurso", "Campos", "Ações"})
			for _, page := range store.Pages() {
				labels := make([]string, 0, len(page.Actions))
				for _, action := range page.Actions {
					labels = append(labels, action.Label)
				}
				t.AppendRow(table.Row{page.Name, page.Title, page.Resource, strconv.Itoa(len(page.Fields)), strings.Join(labels, ", ")})
			}

			var out string
			switch text.Format(format) {
			case text.FormatTable:
				out = t.Render()
			case text.FormatMarkdown:
				out = t.RenderMarkdown()
			case text.FormatCSV:
				out = t.RenderCSV()
			default:
				return fmt.Errorf("unknown format %q (table|markdown|csv)", format)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(text.FormatTable), "output format (table|markdown|csv)")
	return cmd
}
