package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newQueryCmd(s *settings) *cobra.Command {
	var preset string
	var rows int
	cmd := &cobra.Command{
		Use:   "query ZONE TABLE [EXPRESSION]",
		Short: "Run a query expression or a named preset against a table",
		Example: `  medallion query silver silver_products_143005 'filter(brand == "Apple") | head(5)'
  medallion query gold gold_products_143005 --preset top-brands`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"zone": args[0], "table": args[1]}
			switch {
			case len(args) == 3 && preset != "":
				return fmt.Errorf("give either an expression or --preset, not both")
			case len(args) == 3:
				body["query"] = args[2]
			case preset != "":
				body["preset"] = preset
			default:
				return fmt.Errorf("an expression or --preset is required")
			}
			if cmd.Flags().Changed("rows") {
				body["rows"] = rows
			}
			var resp struct {
				Result  tablePayload   `json:"result"`
				History map[string]any `json:"history"`
			}
			if err := s.client().call(http.MethodPost, "/query", nil, body, &resp); err != nil {
				return err
			}
			if getOutputFormat(cmd) == formatJSON {
				return PrintJSON(cmd.OutOrStdout(), resp)
			}
			if err := renderPayload(cmd, resp.Result); err != nil {
				return err
			}
			if getOutputFormat(cmd) == formatTable {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%v rows in %v ms\n", resp.History["rows"], resp.History["time_ms"])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "", "Run a named preset (see 'medallion presets')")
	cmd.Flags().IntVar(&rows, "rows", 0, "Maximum result rows to return (default all)")
	return cmd
}

func newPresetsCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in query presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp struct {
				Data []map[string]any `json:"data"`
			}
			if err := s.client().call(http.MethodGet, "/query/presets", nil, nil, &resp); err != nil {
				return err
			}
			return render(cmd, resp.Data, []string{"name", "title", "query"})
		},
	}
}
