package ui

import (
	"fmt"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/query"
	querysvc "medallion-demo/internal/service/query"
)

// queryForm is the state of the query workbench form.
type queryForm struct {
	Zone   domain.Zone
	Table  string
	Query  string
	Preset string
}

func queryPage(form queryForm, presets []query.Preset, result *querysvc.QueryResult, errMsg string) Node {
	zoneOptions := make([]Node, 0, len(domain.Zones))
	for _, z := range domain.Zones {
		zoneOptions = append(zoneOptions, Option(Value(string(z)), Text(string(z)), If(form.Zone == z, Selected())))
	}
	presetOptions := []Node{Option(Value(""), Text("Custom query"), If(form.Preset == "", Selected()))}
	for _, p := range presets {
		presetOptions = append(presetOptions, Option(Value(p.Name), Text(p.Title), If(form.Preset == p.Name, Selected())))
	}

	nodes := []Node{
		Div(
			Class("card"),
			Form(
				Method("get"),
				Action("/ui/query"),
				Div(
					Class("inline"),
					Label(Text("Zone")),
					Select(Name("zone"), Group(zoneOptions)),
					Label(Text("Table")),
					Input(Type("text"), Name("table"), Value(form.Table), Required()),
					Label(Text("Preset")),
					Select(Name("preset"), Group(presetOptions)),
				),
				P(Textarea(Name("q"), Rows("3"), Placeholder("filter(price > 100) | sort(price, false) | head(10)"), Text(form.Query))),
				Button(Type("submit"), Text("Run")),
			),
			P(Class("muted"), Text("Queries are pipelines of head, filter, select, sort, groupBy -> count/aggregate, describe, nullCounts and valueCounts joined by |.")),
		),
	}
	if errMsg != "" {
		nodes = append(nodes, Div(Class("card"), P(Class("error"), Text(errMsg))))
	}
	if result != nil {
		nodes = append(nodes,
			P(Class("muted"), Text(fmt.Sprintf("%d rows in %d ms", result.Table.Len(), result.Entry.TimeMs))),
			dataTable(result.Table, maxResultRows),
		)
	}
	return appPage("Query", "query", Group(nodes))
}
