package extract

import (
	"strings"

	"github.com/docforge-hq/docforge/internal/patterns"
)

// internalReservedPrefix marks generated protobuf bookkeeping fields whose
// tags never name a real wire field.
const internalReservedPrefix = "XXX_"

// resolveWireName resolves a field's external name through the fixed chain:
// explicit json tag, protobuf-embedded json name, then a name derived from
// the field identifier. The omit sentinel "-" and internal-reserved values
// are treated as "no tag" and fall through the chain.
func resolveWireName(tag, fieldName string) string {
	if tag != "" {
		if m := patterns.JSONTag.FindStringSubmatch(tag); m != nil {
			name, _, _ := strings.Cut(m[1], ",")
			if validWireName(name) {
				return name
			}
		}
		if m := patterns.ProtobufJSONName.FindStringSubmatch(tag); m != nil {
			if validWireName(m[1]) {
				return m[1]
			}
		}
	}
	return deriveWireName(fieldName)
}

func validWireName(name string) bool {
	return name != "" && name != "-" && !strings.HasPrefix(name, internalReservedPrefix)
}

// deriveWireName converts a snake_case identifier to camelCase: split on
// underscores, capitalize every segment but the first. Identifiers without
// underscores pass through unchanged.
func deriveWireName(fieldName string) string {
	if !strings.Contains(fieldName, "_") {
		return fieldName
	}
	parts := strings.Split(fieldName, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
