package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// tablePayload is the tabular body returned for previews and queries.
type tablePayload struct {
	Columns []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"columns"`
	Rows      [][]any `json:"rows"`
	RowCount  int     `json:"row_count"`
	Truncated bool    `json:"truncated"`
}

// renderPayload writes a table payload. JSON output passes the payload
// through; table output adds a note when rows were cut.
func renderPayload(cmd *cobra.Command, p tablePayload) error {
	w := cmd.OutOrStdout()
	if getOutputFormat(cmd) == formatJSON {
		return PrintJSON(w, p)
	}
	columns := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		columns[i] = c.Name
	}
	rows := make([][]string, len(p.Rows))
	for i, row := range p.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			if v == nil {
				cells[j] = "null"
				continue
			}
			cells[j] = formatField(v)
		}
		rows[i] = cells
	}
	if getOutputFormat(cmd) == formatCSV {
		return PrintCSV(w, columns, rows)
	}
	PrintTable(w, columns, rows)
	if p.Truncated {
		_, _ = fmt.Fprintf(w, "Showing %d of %d rows.\n", len(p.Rows), p.RowCount)
	}
	return nil
}

func tablePath(zone, name string) string {
	return "/tables/" + url.PathEscape(zone) + "/" + url.PathEscape(name)
}

func newTablesCmd(s *settings) *cobra.Command {
	var maxResults int
	cmd := &cobra.Command{
		Use:   "tables ZONE",
		Short: "List the tables in a zone (raw, bronze, silver or gold)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := s.client().list("/tables/"+url.PathEscape(args[0]), nil, maxResults, maxResults == 0)
			if err != nil {
				return err
			}
			return render(cmd, items, []string{"zone", "name", "rows", "columns"})
		},
	}
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Maximum tables to list (0 lists all)")
	return cmd
}

func newShowCmd(s *settings) *cobra.Command {
	var rows int
	cmd := &cobra.Command{
		Use:   "show ZONE NAME",
		Short: "Preview the first rows of a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"rows": {strconv.Itoa(rows)}}
			var resp struct {
				Data tablePayload `json:"data"`
			}
			if err := s.client().call(http.MethodGet, tablePath(args[0], args[1]), q, nil, &resp); err != nil {
				return err
			}
			return renderPayload(cmd, resp.Data)
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 20, "Rows to preview")
	return cmd
}

func newExportCmd(s *settings) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "export ZONE NAME",
		Short: "Download a table as CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := s.client().Do(http.MethodGet, tablePath(args[0], args[1])+"/export", nil, nil)
			if err != nil {
				return err
			}
			if err := CheckError(resp); err != nil {
				return err
			}
			body, err := ReadBody(resp)
			if err != nil {
				return fmt.Errorf("read export: %w", err)
			}
			if file == "" || file == "-" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(file, body, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", file, err)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", len(body), file)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Destination file (default stdout)")
	return cmd
}

func newPromoteCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "promote ZONE NAME",
		Short: "Run the stage that promotes a table into the next zone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var stage map[string]any
			if err := s.client().call(http.MethodPost, tablePath(args[0], args[1])+"/promote", nil, nil, &stage); err != nil {
				return err
			}
			if getOutputFormat(cmd) == formatJSON {
				return PrintJSON(cmd.OutOrStdout(), stage)
			}
			return render(cmd, []map[string]any{flattenStage(stage)}, stageColumns)
		},
	}
}
