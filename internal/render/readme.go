// Package render turns extraction snapshots into documentation artifacts:
// a markdown overview and a PlantUML component diagram.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/docforge-hq/docforge/pkg/model"
)

const readmeTemplate = `# {{.Title}}

{{if .Module}}Module ` + "`{{.Module}}`" + ` with {{len .Components}} components and {{.FunctionCount}} functions.
{{end}}
## Components

| Component | Package | Files | Depends on |
|-----------|---------|-------|------------|
{{range .Components}}| {{.Name}} | {{.Package}} | {{len .Files}} | {{join .Dependencies ", "}} |
{{end}}
{{if .REST}}## REST Endpoints

| Method | Path | Handler | Description |
|--------|------|---------|-------------|
{{range .REST}}| {{.Method}} | ` + "`{{.Path}}`" + ` | {{.Handler}} | {{firstLine .Doc}} |
{{end}}
{{end}}{{if .RPC}}## RPC Methods
{{range .RPC}}
### {{.Method}}

{{if .Doc}}{{.Doc}}

{{end}}Request ` + "`{{.RequestType}}`" + `{{if .RequestExample}}:

` + "```json\n{{jsonIndent .RequestExample}}\n```" + `
{{end}}
Response ` + "`{{.ResponseType}}`" + `{{if .ResponseExample}}:

` + "```json\n{{jsonIndent .ResponseExample}}\n```" + `
{{end}}
{{if .SourceRepo}}Defined in {{.SourceRepo}}{{if .SourceLink}} ({{.SourceLink}}){{end}}.
{{end}}{{end}}
{{end}}{{if .Dependencies}}## Dependencies

| Library | Version |
|---------|---------|
{{range .Dependencies}}| {{.Name}} | {{.Version}} |
{{end}}
{{end}}## Tests

{{.TestCount}} tests, {{.BenchmarkCount}} benchmarks, {{.ExampleCount}} examples.
`

type readmeData struct {
	Title          string
	Module         string
	Components     []*model.Component
	FunctionCount  int
	REST           []model.RESTEndpoint
	RPC            []model.RPCEndpoint
	Dependencies   []model.Library
	TestCount      int
	BenchmarkCount int
	ExampleCount   int
}

var readmeFuncs = template.FuncMap{
	"join": strings.Join,
	"firstLine": func(s string) string {
		line, _, _ := strings.Cut(s, "\n")
		return line
	},
	"jsonIndent": func(v any) (string, error) {
		b, err := json.MarshalIndent(v, "", "  ")
		return string(b), err
	},
}

var readmeTmpl = template.Must(template.New("readme").Funcs(readmeFuncs).Parse(readmeTemplate))

// Readme renders the markdown overview for a snapshot.
func Readme(title string, snap *model.Snapshot) (string, error) {
	data := readmeData{
		Title:          title,
		Components:     sortedComponents(snap.Components),
		FunctionCount:  len(snap.Functions),
		REST:           snap.Endpoints.REST,
		RPC:            snap.Endpoints.RPC,
		TestCount:      len(snap.Tests.Tests),
		BenchmarkCount: len(snap.Tests.Benchmarks),
		ExampleCount:   len(snap.Tests.Examples),
	}
	if snap.Libraries != nil {
		data.Module = snap.Libraries.Module
		data.Dependencies = snap.Libraries.Dependencies
	}

	var buf bytes.Buffer
	if err := readmeTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering readme: %w", err)
	}
	return buf.String(), nil
}

func sortedComponents(components map[string]*model.Component) []*model.Component {
	out := make([]*model.Component, 0, len(components))
	for _, c := range components {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
