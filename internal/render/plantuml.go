package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/docforge-hq/docforge/pkg/model"
)

// ComponentDiagram renders a PlantUML component diagram of the dependency
// graph. Components and edges are emitted in sorted order so the output is
// stable across runs.
func ComponentDiagram(title string, components map[string]*model.Component) string {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("@startuml\n")
	if title != "" {
		fmt.Fprintf(&b, "title %s\n", title)
	}
	b.WriteString("\n")

	for _, name := range names {
		fmt.Fprintf(&b, "component [%s] as %s\n", name, alias(name))
	}
	b.WriteString("\n")

	for _, name := range names {
		for _, dep := range components[name].Dependencies {
			if _, ok := components[dep]; !ok {
				continue
			}
			fmt.Fprintf(&b, "%s --> %s\n", alias(name), alias(dep))
		}
	}

	b.WriteString("\n@enduml\n")
	return b.String()
}

// alias converts a component path into a PlantUML-safe identifier.
func alias(name string) string {
	r := strings.NewReplacer("/", "_", "-", "_", ".", "_")
	return r.Replace(name)
}
