package export

import (
	"html/template"
	"strings"

	"github.com/jonathan/company-analyst/internal/types"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Report.CompanyName}} — Evaluation Report</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; color: #1c1e21; }
h1 { border-bottom: 2px solid #e4e6eb; padding-bottom: .5rem; }
.verdict { display: inline-block; padding: .25rem .75rem; border-radius: 1rem; color: #fff; font-weight: 600; }
.verdict.rank-5 { background: #1a7f37; }
.verdict.rank-4 { background: #4c9a52; }
.verdict.rank-3 { background: #bf8700; }
.verdict.rank-2 { background: #cf5c36; }
.verdict.rank-1 { background: #a40e26; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #d0d7de; padding: .4rem .8rem; text-align: left; }
.warning { background: #fff3cd; border: 1px solid #ffe69c; padding: .75rem 1rem; border-radius: .5rem; }
.cites { color: #656d76; font-size: .9em; }
footer { color: #656d76; border-top: 1px solid #e4e6eb; margin-top: 2rem; padding-top: 1rem; }
</style>
</head>
<body>
<h1>{{.Report.CompanyName}} — Evaluation Report</h1>
<p>
<span class="verdict rank-{{.Report.Verdict.Rank}}">{{.Report.Verdict}}</span>
&nbsp;Total score {{printf "%.2f" .Report.TotalScore}} / 5
</p>
{{if not .Report.Quality.Passed}}<p class="warning">This report failed quality checks and should not be relied on.</p>{{end}}
<h2>Scores</h2>
<table>
<tr><th>Axis</th><th>Score</th><th>Weight</th></tr>
{{range .Axes}}<tr><td>{{.Name}}</td><td>{{printf "%.1f" .Score}}</td><td>{{.Weight}}</td></tr>
{{end}}</table>
{{if .Report.KeyAttractions}}<h2>Key Attractions</h2><ul>{{range .Report.KeyAttractions}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Report.KeyRisks}}<h2>Key Risks</h2><ul>{{range .Report.KeyRisks}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Report.VerificationItems}}<h2>Verify During Interviews</h2><ul>{{range .Report.VerificationItems}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{range .Sections}}<h2>{{.Title}}</h2><p>{{.Body}}</p>
{{end}}{{if .Report.Judgments}}<h2>Supporting Evidence</h2><ul>
{{range .Report.Judgments}}<li>{{.Claim}} <span class="cites">(cites {{join .Cites ", "}})</span></li>
{{end}}</ul>{{end}}
<footer>Generated {{.Report.GeneratedAt.Format "2006-01-02 15:04 MST"}} by {{.Report.Provider}}/{{.Report.Model}} from {{.Report.DataSources.Total}} evidence records.</footer>
</body>
</html>
`

type htmlData struct {
	Report   *types.Report
	Axes     []axisRow
	Sections []sectionView
}

type axisRow struct {
	Name   string
	Score  float64
	Weight int
}

type sectionView struct {
	Title string
	Body  string
}

var htmlTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(htmlTemplate))

// RenderHTML renders a report as a standalone HTML document.
func RenderHTML(rpt *types.Report) (string, error) {
	weightMap := rpt.Weights.ToMap()
	data := htmlData{Report: rpt}
	for _, axis := range types.AxisNames() {
		data.Axes = append(data.Axes, axisRow{
			Name:   axis,
			Score:  rpt.Scores[axis],
			Weight: weightMap[axis],
		})
	}
	for _, s := range rpt.Sections {
		data.Sections = append(data.Sections, sectionView{
			Title: sectionTitle(s.Name),
			Body:  s.Body,
		})
	}

	var sb strings.Builder
	if err := htmlTmpl.Execute(&sb, data); err != nil {
		return "", &TemplateError{
			Message: "failed to execute report template",
			Cause:   err,
		}
	}
	return sb.String(), nil
}
