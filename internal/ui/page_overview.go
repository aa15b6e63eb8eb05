package ui

import (
	"fmt"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"medallion-demo/internal/domain"
)

func metricCard(title, value, href string) Node {
	return Div(
		Class("card"),
		H2(Text(title)),
		P(Class("metric"), Text(value)),
		If(href != "", A(Href(href), Text("View"))),
	)
}

func overviewPage(ov *domain.Overview) Node {
	zones := make([]Node, 0, len(ov.Zones))
	for _, z := range ov.Zones {
		zones = append(zones, Div(
			Class("card"),
			H2(zoneLabel(z.Zone)),
			P(Class("metric"), Text(fmt.Sprintf("%d tables", z.Tables))),
			P(Class("muted"), Text(fmt.Sprintf("%d rows", z.TotalRows))),
			A(Href("/ui/zones/"+string(z.Zone)), Text("Browse")),
		))
	}
	return appPage("Overview", "home",
		Div(Class("grid"), Group(zones)),
		Div(
			Class("grid"),
			metricCard("Catalog entries", fmt.Sprint(ov.CatalogEntries), "/ui/catalog"),
			metricCard("Jobs", fmt.Sprint(ov.Jobs), "/ui/jobs"),
			metricCard("Queries", fmt.Sprint(ov.Queries), "/ui/history"),
			metricCard("Lineage events", fmt.Sprint(ov.Lineage.TotalEvents), "/ui/lineage"),
			metricCard("Rows moved", fmt.Sprint(ov.Lineage.TotalRowsMoved), ""),
			metricCard("Mean step time", fmt.Sprintf("%.1f ms", ov.Lineage.AvgDurationMs), ""),
		),
	)
}
