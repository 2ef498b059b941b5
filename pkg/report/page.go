package report

import (
	"html/template"
	"io"

	"github.com/kilianp07/routegap/core/gap"
	"github.com/kilianp07/routegap/core/model"
)

// Page holds everything the report page shows. When Err is set the page
// renders the failure instead of the table and chart.
type Page struct {
	Title       string
	Description string
	Report      *gap.Report
	Err         error
	ErrKind     string
	// ChartURL and CSVURL are relative links to the chart document and the
	// CSV export.
	ChartURL string
	CSVURL   string
	CSVName  string
}

var pageTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"pct": func(f float64) float64 { return f * 100 },
	"rowClass": func(a model.Action) string {
		switch a {
		case model.ActionAdd:
			return "shortage"
		case model.ActionReallocate:
			return "surplus"
		default:
			return "balanced"
		}
	},
}).Parse(pageHTML))

// WritePage renders p as an HTML document.
func WritePage(w io.Writer, p Page) error {
	return pageTmpl.Execute(w, p)
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: .4rem .8rem; text-align: right; }
th:first-child, td:first-child, td.suggestion { text-align: left; }
tr.shortage td.gap { color: #b00020; }
tr.surplus td.gap { color: #1b5e20; }
.error { border: 1px solid #b00020; background: #fdecea; padding: 1rem; }
iframe { border: none; width: 1000px; height: 560px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
{{if .Err}}
<div class="error" role="alert">
<h2>Analysis failed</h2>
{{if .ErrKind}}<p>Kind: <code>{{.ErrKind}}</code></p>{{end}}
<pre>{{.Err}}</pre>
</div>
{{else}}{{with .Report}}
<p>Run <code>{{.RunID}}</code> generated {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}{{if .Source}} from {{.Source}}{{end}}, {{.CapacityPerVehicle}} seats per vehicle.</p>
<h2>Summary</h2>
<ul>
<li>Routes: {{.Summary.Routes}} ({{.Summary.ShortageRoutes}} shortage, {{.Summary.SurplusRoutes}} surplus, {{.Summary.BalancedRoutes}} balanced)</li>
<li>Total demand: {{.Summary.TotalDemand}} passengers</li>
<li>Total capacity: {{.Summary.TotalCapacity}} seats on {{.Summary.TotalVehicles}} vehicles</li>
<li>Net gap: {{.Summary.NetGap}} seats</li>
<li>Vehicles needed: {{.Summary.VehiclesNeeded}}, vehicles in excess: {{.Summary.VehiclesExcess}}</li>
<li>Utilization: {{printf "%.1f" (pct .Summary.Utilization)}}%</li>
</ul>
<h2>Routes</h2>
<table>
<thead><tr><th>Route</th><th>Passenger Demand</th><th>Vehicles Assigned</th><th>Total Capacity</th><th>Gap</th><th>Suggestion</th></tr></thead>
<tbody>
{{range .Routes}}<tr class="{{rowClass .Suggestion.Action}}"><td>{{.RouteName}}</td><td>{{.PassengerDemand}}</td><td>{{.VehiclesAssigned}}</td><td>{{.TotalCapacity}}</td><td class="gap">{{.Gap}}</td><td class="suggestion">{{.Suggestion.Text}}</td></tr>
{{end}}</tbody>
</table>
<h2>Reallocation plan</h2>
{{if .Plan.Transfers}}<ul>
{{range .Plan.Transfers}}<li>Move {{.Vehicles}} from {{.From}} to {{.To}}</li>
{{end}}</ul>{{else}}<p>No transfers possible.</p>{{end}}
{{if .Plan.Unmet}}<p>Still needed after reallocation: {{.Plan.Unmet}} vehicles.</p>{{end}}
{{if .Plan.Idle}}<p>Spare after reallocation: {{.Plan.Idle}} vehicles.</p>{{end}}
{{end}}
{{if .ChartURL}}<h2>Demand vs capacity</h2>
<iframe src="{{.ChartURL}}" title="Demand vs capacity chart"></iframe>{{end}}
{{if .CSVURL}}<p><a href="{{.CSVURL}}" download="{{.CSVName}}">Download CSV</a></p>{{end}}
{{end}}
</body>
</html>
`
