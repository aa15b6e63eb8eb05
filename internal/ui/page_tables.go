package ui

import (
	"fmt"
	"strings"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/export"
	"medallion-demo/internal/frame"
)

func zonePage(zone domain.Zone, tables []domain.TableSummary) Node {
	if len(tables) == 0 {
		return appPage(zone.Upper()+" zone", string(zone), emptyStateCard("No tables in this zone yet."))
	}
	rows := make([]Node, 0, len(tables))
	for _, t := range tables {
		ref := domain.TableRef{Zone: t.Zone, Name: t.Name}
		rows = append(rows, Tr(
			Td(A(Href(tableHref(ref)), Text(t.Name))),
			Td(Text(fmt.Sprint(t.Rows))),
			Td(Text(fmt.Sprint(t.Columns))),
		))
	}
	return appPage(zone.Upper()+" zone", string(zone), Div(
		Class("card"),
		Table(
			THead(Tr(Th(Text("Table")), Th(Text("Rows")), Th(Text("Columns")))),
			TBody(Group(rows)),
		),
	))
}

func tablePage(ref domain.TableRef, entry *domain.CatalogEntry, t *frame.Table, limit int) Node {
	exportHref := "/v1/tables/" + string(ref.Zone) + "/" + ref.Name + "/export"
	info := []Node{
		P(zoneLabel(ref.Zone), Text(fmt.Sprintf(" %d rows, %d columns", t.Len(), t.Width()))),
		P(
			A(Href(exportHref), Text("Download "+export.Filename(ref.Name))),
			Text(" | "),
			A(Href("/ui/query?zone="+string(ref.Zone)+"&table="+ref.Name), Text("Query this table")),
		),
	}
	if entry != nil {
		info = append(info,
			P(Class("muted"), Text("Source: "+entry.Source)),
			P(Class("muted"), Text("Created: "+formatTime(entry.CreatedAt))),
			P(Class("muted"), Text("Checksum: "+entry.Checksum)),
			P(Class("muted"), Text("Owner: "+entry.Owner+" | Tags: "+strings.Join(entry.Tags, ", "))),
		)
	}
	return appPage(ref.Name, string(ref.Zone),
		Div(Class("card"), Group(info)),
		dataTable(t, limit),
	)
}
