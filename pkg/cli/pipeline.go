package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var stageColumns = []string{"index", "name", "output", "rows", "duration_ms", "degraded"}

// flattenStage turns a stage result into display fields.
func flattenStage(stage map[string]any) map[string]any {
	out := map[string]any{}
	for k, v := range stage {
		out[k] = v
	}
	if ref, ok := stage["output"].(map[string]any); ok {
		out["output"] = fmt.Sprintf("%v/%v", ref["zone"], ref["name"])
	}
	if d, ok := stage["degraded"].(map[string]any); ok {
		out["degraded"] = d["reason"]
	} else {
		out["degraded"] = ""
	}
	return out
}

// isURI reports whether arg names a remote dataset rather than a local file.
func isURI(arg string) bool {
	return strings.Contains(arg, "://")
}

func newIngestCmd(s *settings) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "ingest FILE|URI",
		Short: "Load a CSV dataset into the raw zone",
		Long: "Load a CSV dataset into the raw zone. Local files are uploaded; " +
			"URIs (file://, s3://, gs://, az://, abfss:// or an https:// blob URL) are read by the server.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entry map[string]any
			c := s.client()
			if isURI(args[0]) {
				body := map[string]string{"uri": args[0], "name": name}
				if err := c.call(http.MethodPost, "/ingest", nil, body, &entry); err != nil {
					return err
				}
			} else {
				f, err := os.Open(args[0]) //nolint:gosec // user-supplied input file
				if err != nil {
					return fmt.Errorf("open %s: %w", args[0], err)
				}
				defer f.Close() //nolint:errcheck
				if name == "" {
					name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				}
				resp, err := c.DoRaw(http.MethodPost, "/ingest", url.Values{"name": {name}}, f, "text/csv")
				if err != nil {
					return err
				}
				if err := decodeResponse(resp, &entry); err != nil {
					return err
				}
			}
			return renderEntry(cmd, entry)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Raw table name (default derived from the file or URI)")
	return cmd
}

func newGenerateCmd(s *settings) *cobra.Command {
	var rows int
	var seed uint64
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic product dataset into the raw zone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var entry map[string]any
			body := map[string]any{"rows": rows, "seed": seed}
			if err := s.client().call(http.MethodPost, "/generate", nil, body, &entry); err != nil {
				return err
			}
			return renderEntry(cmd, entry)
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 1000, "Rows to generate")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Generator seed; equal seeds give equal datasets")
	return cmd
}

// renderEntry prints the catalog entry of a newly ingested table.
func renderEntry(cmd *cobra.Command, entry map[string]any) error {
	if getOutputFormat(cmd) == formatJSON {
		return PrintJSON(cmd.OutOrStdout(), entry)
	}
	return render(cmd, []map[string]any{entry}, []string{"zone", "table_name", "row_count", "source", "checksum"})
}

func newRunCmd(s *settings) *cobra.Command {
	var haltOnDegraded bool
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "run [RAW...]",
		Short: "Run the bronze, silver and gold stages over raw tables",
		Long: "Run the pipeline. With no arguments the most recently ingested raw table is used; " +
			"several arguments run as a batch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"halt_on_degraded": haltOnDegraded}
			if timeout > 0 {
				body["timeout"] = timeout.String()
			}
			switch len(args) {
			case 0:
			case 1:
				body["raw"] = args[0]
			default:
				body["raws"] = args
			}
			c := s.client()
			if len(args) > 1 {
				var batch struct {
					Results []map[string]any `json:"results"`
				}
				if err := c.call(http.MethodPost, "/pipelines/runs", nil, body, &batch); err != nil {
					return err
				}
				if getOutputFormat(cmd) == formatJSON {
					return PrintJSON(cmd.OutOrStdout(), batch)
				}
				return render(cmd, flattenBatch(batch.Results), []string{"raw", "state", "stages_completed", "error"})
			}
			var result map[string]any
			if err := c.call(http.MethodPost, "/pipelines/runs", nil, body, &result); err != nil {
				return err
			}
			return renderRun(cmd, result)
		},
	}
	cmd.Flags().BoolVar(&haltOnDegraded, "halt-on-degraded", false, "Stop at the first degraded stage")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Bound on each run (0 uses the server default)")
	return cmd
}

func flattenBatch(results []map[string]any) []map[string]any {
	out := make([]map[string]any, len(results))
	for i, r := range results {
		row := map[string]any{"raw": r["raw"], "error": r["error"]}
		if res, ok := r["result"].(map[string]any); ok {
			row["state"] = res["state"]
			row["stages_completed"] = res["stages_completed"]
		}
		out[i] = row
	}
	return out
}

// renderRun prints the stages of one pipeline run followed by its state.
func renderRun(cmd *cobra.Command, result map[string]any) error {
	if getOutputFormat(cmd) == formatJSON {
		return PrintJSON(cmd.OutOrStdout(), result)
	}
	stages, _ := result["stages"].([]any)
	rows := make([]map[string]any, 0, len(stages))
	for _, st := range stages {
		if m, ok := st.(map[string]any); ok {
			rows = append(rows, flattenStage(m))
		}
	}
	if err := render(cmd, rows, stageColumns); err != nil {
		return err
	}
	if getOutputFormat(cmd) == formatTable {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Run %v: %v\n", result["run_id"], result["state"])
	}
	return nil
}
