package ui

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/frame"
)

type navItem struct {
	Label string
	Href  string
	Key   string
}

var navItems = []navItem{
	{Label: "Overview", Href: "/ui", Key: "home"},
	{Label: "Raw", Href: "/ui/zones/raw", Key: "raw"},
	{Label: "Bronze", Href: "/ui/zones/bronze", Key: "bronze"},
	{Label: "Silver", Href: "/ui/zones/silver", Key: "silver"},
	{Label: "Gold", Href: "/ui/zones/gold", Key: "gold"},
	{Label: "Catalog", Href: "/ui/catalog", Key: "catalog"},
	{Label: "Lineage", Href: "/ui/lineage", Key: "lineage"},
	{Label: "Jobs", Href: "/ui/jobs", Key: "jobs"},
	{Label: "Ingestions", Href: "/ui/ingestions", Key: "ingestions"},
	{Label: "Query", Href: "/ui/query", Key: "query"},
	{Label: "History", Href: "/ui/history", Key: "history"},
}

func head(title string) Node {
	return Head(
		Meta(Charset("utf-8")),
		Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
		TitleEl(Text(title+" | Medallion Lake")),
		Link(Rel("icon"), Href("data:,")),
		Link(Rel("stylesheet"), Href("/ui/static/app.css")),
	)
}

func appPage(title, active string, body ...Node) Node {
	nav := make([]Node, 0, len(navItems))
	for _, item := range navItems {
		className := ""
		if item.Key == active {
			className = "active"
		}
		nav = append(nav, A(Href(item.Href), Class(className), Text(item.Label)))
	}

	return HTML(
		Lang("en"),
		head(title),
		Body(
			Main(Class("app-shell"),
				Aside(
					Class("app-sidebar"),
					Div(
						Class("brand"),
						Strong(Text("Medallion Lake")),
						P(Class("muted"), Text("Raw, bronze, silver, gold")),
					),
					Nav(Class("app-nav"), Group(nav)),
				),
				Section(
					Class("app-main"),
					H1(Class("page-title"), Text(title)),
					Group(body),
				),
			),
		),
	)
}

func errorPage(title, message string) Node {
	return HTML(
		Lang("en"),
		head(title),
		Body(
			Main(
				Class("app-main"),
				H1(Class("page-title"), Text(title)),
				P(Class("error"), Text(message)),
				P(A(Href("/ui"), Text("Back to overview"))),
			),
		),
	)
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format(time.RFC3339)
}

func formatDuration(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}

func zoneLabel(z domain.Zone) Node {
	return Span(Class("zone zone-"+string(z)), Text(string(z)))
}

func tableHref(ref domain.TableRef) string {
	return "/ui/tables/" + string(ref.Zone) + "/" + url.PathEscape(ref.Name)
}

// refLink links a qualified "zone/name" reference to its table page; any
// other lineage source renders as plain text.
func refLink(s string) Node {
	ref, err := domain.ParseTableRef(s)
	if err != nil {
		return Text(s)
	}
	return A(Href(tableHref(ref)), Text(s))
}

func paginationCard(basePath string, query url.Values, page domain.PageRequest, total int64) Node {
	nextToken := domain.NextPageToken(max(page.Offset(), 0), page.Limit(), total)
	if nextToken == "" {
		return Div(Class("card"), P(Class("muted"), Text(fmt.Sprintf("Showing %d of %d entries.", min(page.Limit(), int(total)), total))))
	}
	next := url.Values{}
	for k, v := range query {
		next[k] = v
	}
	next.Set("max_results", fmt.Sprint(page.Limit()))
	next.Set("page_token", nextToken)
	return Div(
		Class("card"),
		P(Class("muted"), Text(fmt.Sprintf("Showing up to %d of %d entries.", page.Limit(), total))),
		A(Href(basePath+"?"+next.Encode()), Text("Next page ->")),
	)
}

func emptyStateCard(message string) Node {
	return Div(Class("card"), P(Class("muted"), Text(message)))
}

// dataTable renders the first limit rows of t. Nulls render as "null".
func dataTable(t *frame.Table, limit int) Node {
	n := min(t.Len(), limit)
	header := make([]Node, 0, t.Width())
	for _, c := range t.Columns() {
		header = append(header, Th(Text(c.Name), Span(Class("muted"), Text(" "+string(c.Type)))))
	}
	body := make([]Node, 0, n)
	for i := range n {
		cells := make([]Node, 0, t.Width())
		for _, v := range t.Row(i) {
			if frame.IsNull(v) {
				cells = append(cells, Td(Class("null"), Text("null")))
				continue
			}
			cells = append(cells, Td(Text(frame.Format(v))))
		}
		body = append(body, Tr(Group(cells)))
	}
	return Div(
		Class("card"),
		Table(THead(Tr(Group(header))), TBody(Group(body))),
		If(n < t.Len(), P(Class("muted"), Text(fmt.Sprintf("Showing %d of %d rows.", n, t.Len())))),
	)
}

func statusClass(status string) string {
	if status == domain.QueryStatusOK || status == domain.StatusSuccess {
		return "status-ok"
	}
	if strings.HasPrefix(status, domain.QueryStatusErrorPrefix) || status == domain.StatusDegraded {
		return "status-error"
	}
	return ""
}
