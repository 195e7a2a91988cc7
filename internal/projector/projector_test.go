package projector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docforge-hq/docforge/pkg/model"
)

func TestValueFor(t *testing.T) {
	p := New()

	tests := []struct {
		goType string
		want   any
	}{
		{"string", "string"},
		{"int", 0},
		{"int64", 0},
		{"uint32", 0},
		{"float32", 0.0},
		{"float64", 0.0},
		{"bool", false},
		{"byte", 0},
		{"time.Time", "2023-01-01T00:00:00Z"},
		{"time.Duration", "1s"},
		{"*int32", 0},
		{"*string", "string"},
		{"*CustomStruct", nil},
		{"[]string", []any{}},
		{"[]*User", []any{}},
		{"map[string]int", map[string]any{}},
		{"durationpb.Duration", "1s"},
		{"SomethingUnknown", map[string]any{}},
		{" string ", "string"},
	}

	for _, tt := range tests {
		t.Run(tt.goType, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ValueFor(tt.goType))
		})
	}
}

func TestProject(t *testing.T) {
	p := New()

	s := model.Struct{
		Name: "CreateUserRequest",
		Fields: []model.Field{
			{Name: "ID", Type: "string", WireName: "id"},
			{Name: "Age", Type: "int32", WireName: "age"},
			{Name: "Tags", Type: "[]string", WireName: "tags"},
			{Name: "Meta", Type: "map[string]string", WireName: "meta"},
			{Name: "Parent", Type: "*CreateUserRequest", WireName: "parent"},
			{Name: "Secret", Type: "string", WireName: "-"},
			{Name: "Cache", Type: "int32", WireName: "XXX_sizecache"},
		},
	}

	got := p.Project(s)
	assert.Equal(t, map[string]any{
		"id":     "string",
		"age":    0,
		"tags":   []any{},
		"meta":   map[string]any{},
		"parent": nil,
	}, got)
	assert.NotContains(t, got, "-")
	assert.NotContains(t, got, "XXX_sizecache")
}

func TestProject_EmptyStruct(t *testing.T) {
	got := New().Project(model.Struct{Name: "Empty"})
	assert.Equal(t, map[string]any{}, got)
}
