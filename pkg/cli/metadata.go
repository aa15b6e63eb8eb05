package cli

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

// listCmd builds a command over one paginated list endpoint.
func listCmd(s *settings, use, short, path string, columns []string, query func() url.Values) *cobra.Command {
	var maxResults int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var q url.Values
			if query != nil {
				q = query()
			}
			items, err := s.client().list(path, q, maxResults, maxResults == 0)
			if err != nil {
				return err
			}
			return render(cmd, items, columns)
		},
	}
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Maximum entries to list (0 lists all)")
	return cmd
}

func newCatalogCmd(s *settings) *cobra.Command {
	var zone, text string
	cmd := listCmd(s, "catalog", "Search the metadata catalog", "/catalog",
		[]string{"zone", "table_name", "row_count", "source", "owner", "created_at"},
		func() url.Values {
			q := url.Values{}
			if zone != "" {
				q.Set("zone", zone)
			}
			if text != "" {
				q.Set("q", text)
			}
			return q
		})
	cmd.Flags().StringVar(&zone, "zone", "", "Only entries in this zone")
	cmd.Flags().StringVar(&text, "q", "", "Case-insensitive search text")
	return cmd
}

func newLineageCmd(s *settings) *cobra.Command {
	var graph bool
	cmd := listCmd(s, "lineage", "List lineage events", "/lineage",
		[]string{"source", "destination", "operation", "rows_processed", "duration_ms", "status"}, nil)
	list := cmd.RunE
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if !graph {
			return list(cmd, args)
		}
		var g struct {
			Nodes []string `json:"nodes"`
			Links []struct {
				Source int `json:"source"`
				Target int `json:"target"`
				Value  int `json:"value"`
			} `json:"links"`
		}
		if err := s.client().call(http.MethodGet, "/lineage/graph", nil, nil, &g); err != nil {
			return err
		}
		if getOutputFormat(cmd) == formatJSON {
			return PrintJSON(cmd.OutOrStdout(), g)
		}
		items := make([]map[string]any, 0, len(g.Links))
		for _, l := range g.Links {
			if l.Source >= len(g.Nodes) || l.Target >= len(g.Nodes) {
				return fmt.Errorf("lineage graph link references unknown node")
			}
			items = append(items, map[string]any{
				"source": g.Nodes[l.Source], "target": g.Nodes[l.Target], "rows": float64(l.Value),
			})
		}
		return render(cmd, items, []string{"source", "target", "rows"})
	}
	cmd.Flags().BoolVar(&graph, "graph", false, "Show the aggregated source to destination graph")
	return cmd
}

func newJobsCmd(s *settings) *cobra.Command {
	return listCmd(s, "jobs", "List pipeline stage jobs", "/jobs",
		[]string{"job_name", "zone", "rows", "duration_ms", "status", "started_at"}, nil)
}

func newHistoryCmd(s *settings) *cobra.Command {
	return listCmd(s, "history", "List executed queries", "/query-history",
		[]string{"dataset", "query", "rows", "time_ms", "status", "created_at"}, nil)
}

func newIngestionsCmd(s *settings) *cobra.Command {
	return listCmd(s, "ingestions", "List ingested datasets", "/ingestion-log",
		[]string{"dataset", "rows", "source", "time"}, nil)
}

func newOverviewCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Summarise the lake zones and metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var ov struct {
				Zones          []map[string]any `json:"zones"`
				CatalogEntries int              `json:"catalog_entries"`
				Jobs           int              `json:"jobs"`
				Queries        int              `json:"queries"`
				Lineage        map[string]any   `json:"lineage"`
			}
			if err := s.client().call(http.MethodGet, "/overview", nil, nil, &ov); err != nil {
				return err
			}
			if getOutputFormat(cmd) == formatJSON {
				return PrintJSON(cmd.OutOrStdout(), ov)
			}
			if err := render(cmd, ov.Zones, []string{"zone", "tables", "total_rows"}); err != nil {
				return err
			}
			if getOutputFormat(cmd) == formatCSV {
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			PrintDetail(cmd.OutOrStdout(), map[string]any{
				"catalog entries": float64(ov.CatalogEntries),
				"jobs":            float64(ov.Jobs),
				"queries":         float64(ov.Queries),
				"lineage events":  ov.Lineage["total_events"],
				"rows moved":      ov.Lineage["total_rows_moved"],
				"avg stage ms":    ov.Lineage["avg_duration_ms"],
			})
			return nil
		},
	}
}
