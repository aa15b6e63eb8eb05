package ui

import (
	"fmt"
	"net/url"
	"strings"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"medallion-demo/internal/domain"
)

func catalogPage(entries []domain.CatalogEntry, filter domain.CatalogFilter, page domain.PageRequest, total int64) Node {
	zoneOptions := []Node{Option(Value(""), Text("All zones"), If(filter.Zone == "", Selected()))}
	for _, z := range domain.Zones {
		zoneOptions = append(zoneOptions, Option(Value(string(z)), Text(string(z)), If(filter.Zone == z, Selected())))
	}
	search := Div(
		Class("card"),
		Form(
			Class("inline"),
			Method("get"),
			Action("/ui/catalog"),
			Input(Type("search"), Name("q"), Value(filter.Text), Placeholder("Search name, source, tag...")),
			Select(Name("zone"), Group(zoneOptions)),
			Button(Type("submit"), Text("Search")),
		),
	)
	if len(entries) == 0 {
		return appPage("Catalog", "catalog", search, emptyStateCard("No catalog entries match."))
	}

	rows := make([]Node, 0, len(entries))
	for _, e := range entries {
		schema := make([]string, 0, len(e.Schema))
		for _, f := range e.Schema {
			schema = append(schema, f.Name+" "+f.Type)
		}
		rows = append(rows, Tr(
			Td(A(Href(tableHref(e.Ref())), Text(e.TableName))),
			Td(zoneLabel(e.Zone)),
			Td(Text(fmt.Sprint(e.RowCount))),
			Td(Text(e.Source)),
			Td(Text(strings.Join(e.Tags, ", "))),
			Td(Text(formatTime(e.CreatedAt))),
			Td(Class("muted"), Text(strings.Join(schema, ", "))),
		))
	}
	query := url.Values{}
	if filter.Text != "" {
		query.Set("q", filter.Text)
	}
	if filter.Zone != "" {
		query.Set("zone", string(filter.Zone))
	}
	return appPage("Catalog", "catalog",
		search,
		Div(Class("card"), Table(
			THead(Tr(Th(Text("Table")), Th(Text("Zone")), Th(Text("Rows")), Th(Text("Source")), Th(Text("Tags")), Th(Text("Created")), Th(Text("Schema")))),
			TBody(Group(rows)),
		)),
		paginationCard("/ui/catalog", query, page, total),
	)
}

func lineagePage(events []domain.LineageEvent, page domain.PageRequest, total int64) Node {
	if len(events) == 0 {
		return appPage("Lineage", "lineage", emptyStateCard("No lineage recorded yet."))
	}
	rows := make([]Node, 0, len(events))
	for _, e := range events {
		rows = append(rows, Tr(
			Td(refLink(e.Source)),
			Td(refLink(e.Destination)),
			Td(Text(e.Operation)),
			Td(Text(fmt.Sprint(e.RowsProcessed))),
			Td(Text(formatDuration(e.DurationMs))),
			Td(Class(statusClass(e.Status)), Text(e.Status)),
			Td(Class("muted"), Text(e.Detail)),
			Td(Text(formatTime(e.Timestamp))),
		))
	}
	return appPage("Lineage", "lineage",
		Div(Class("card"), Table(
			THead(Tr(Th(Text("Source")), Th(Text("Destination")), Th(Text("Operation")), Th(Text("Rows")), Th(Text("Duration")), Th(Text("Status")), Th(Text("Detail")), Th(Text("Time")))),
			TBody(Group(rows)),
		)),
		paginationCard("/ui/lineage", nil, page, total),
	)
}

func jobsPage(jobs []domain.JobRecord, page domain.PageRequest, total int64) Node {
	if len(jobs) == 0 {
		return appPage("Jobs", "jobs", emptyStateCard("No jobs have run yet."))
	}
	rows := make([]Node, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, Tr(
			Td(Text(j.JobName)),
			Td(zoneLabel(j.Zone)),
			Td(Text(fmt.Sprint(j.Rows))),
			Td(Text(formatDuration(j.DurationMs))),
			Td(Text(fmt.Sprint(j.Workers))),
			Td(Class(statusClass(j.Status)), Text(j.Status)),
			Td(Text(formatTime(j.StartedAt))),
		))
	}
	return appPage("Jobs", "jobs",
		Div(Class("card"), Table(
			THead(Tr(Th(Text("Job")), Th(Text("Zone")), Th(Text("Rows")), Th(Text("Duration")), Th(Text("Workers")), Th(Text("Status")), Th(Text("Started")))),
			TBody(Group(rows)),
		)),
		paginationCard("/ui/jobs", nil, page, total),
	)
}

func ingestionsPage(entries []domain.IngestionLogEntry, page domain.PageRequest, total int64) Node {
	if len(entries) == 0 {
		return appPage("Ingestions", "ingestions", emptyStateCard("Nothing has been ingested yet."))
	}
	rows := make([]Node, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Tr(
			Td(A(Href(tableHref(domain.TableRef{Zone: domain.ZoneRaw, Name: e.Dataset})), Text(e.Dataset))),
			Td(Text(fmt.Sprint(e.Rows))),
			Td(Text(e.Source)),
			Td(Text(formatTime(e.Time))),
		))
	}
	return appPage("Ingestions", "ingestions",
		Div(Class("card"), Table(
			THead(Tr(Th(Text("Dataset")), Th(Text("Rows")), Th(Text("Source")), Th(Text("Time")))),
			TBody(Group(rows)),
		)),
		paginationCard("/ui/ingestions", nil, page, total),
	)
}

func historyPage(entries []domain.QueryHistoryEntry, page domain.PageRequest, total int64) Node {
	if len(entries) == 0 {
		return appPage("Query history", "history", emptyStateCard("No queries have run yet."))
	}
	rows := make([]Node, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Tr(
			Td(Code(Text(e.Query))),
			Td(refLink(e.Dataset)),
			Td(Text(fmt.Sprint(e.Rows))),
			Td(Text(fmt.Sprintf("%d ms", e.TimeMs))),
			Td(Class(statusClass(e.Status)), Text(e.Status)),
			Td(Text(formatTime(e.CreatedAt))),
		))
	}
	return appPage("Query history", "history",
		Div(Class("card"), Table(
			THead(Tr(Th(Text("Query")), Th(Text("Dataset")), Th(Text("Rows")), Th(Text("Time")), Th(Text("Status")), Th(Text("Run at")))),
			TBody(Group(rows)),
		)),
		paginationCard("/ui/history", nil, page, total),
	)
}
