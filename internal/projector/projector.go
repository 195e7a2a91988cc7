// Package projector converts struct declarations into illustrative JSON
// example trees. The type table is closed and the defaulting chain is total:
// every field projects to some JSON value, unrecognized types included.
package projector

import (
	"strings"

	"github.com/docforge-hq/docforge/pkg/model"
)

// Example values for the designated timestamp and duration types.
const (
	exampleTimestamp = "2023-01-01T00:00:00Z"
	exampleDuration  = "1s"
)

var scalarTable = map[string]any{
	"string":        "string",
	"int":           0,
	"int8":          0,
	"int16":         0,
	"int32":         0,
	"int64":         0,
	"uint":          0,
	"uint8":         0,
	"uint16":        0,
	"uint32":        0,
	"uint64":        0,
	"float32":       0.0,
	"float64":       0.0,
	"bool":          false,
	"byte":          0,
	"rune":          0,
	"time.Time":     exampleTimestamp,
	"time.Duration": exampleDuration,
}

// Projector maps struct fields to representative JSON values.
type Projector struct{}

// New returns a projector.
func New() *Projector {
	return &Projector{}
}

// Project builds an example object for a struct. Fields whose wire name is
// the omit sentinel or an internal-reserved name are left out; everything
// else gets a value from the type table.
func (p *Projector) Project(s model.Struct) map[string]any {
	obj := make(map[string]any)
	for _, f := range s.Fields {
		if f.WireName == "" || f.WireName == "-" || strings.HasPrefix(f.WireName, "XXX_") {
			continue
		}
		obj[f.WireName] = p.ValueFor(f.Type)
	}
	return obj
}

// ValueFor maps a declared type to its representative JSON value. Total:
// never fails to produce a value.
func (p *Projector) ValueFor(goType string) any {
	goType = strings.TrimSpace(goType)

	if v, ok := scalarTable[goType]; ok {
		return v
	}

	// Pointers project as their pointee; pointer-to-struct/unknown is null.
	if strings.HasPrefix(goType, "*") {
		inner := strings.TrimSpace(goType[1:])
		if v, ok := scalarTable[inner]; ok {
			return v
		}
		return nil
	}

	if strings.HasPrefix(goType, "[]") {
		return []any{}
	}
	if strings.HasPrefix(goType, "map[") {
		return map[string]any{}
	}

	// Duration aliases (e.g. durationpb.Duration) keep the duration literal.
	if strings.Contains(goType, "Duration") {
		return exampleDuration
	}

	// Unknown or struct-valued field: empty object as the safe default.
	return map[string]any{}
}
