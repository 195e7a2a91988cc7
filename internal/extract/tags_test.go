package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveWireName(t *testing.T) {
	tests := []struct {
		name  string
		tag   string
		field string
		want  string
	}{
		{"json tag", `json:"name"`, "Name", "name"},
		{"json tag with options", `json:"name,omitempty"`, "Name", "name"},
		{"omit sentinel falls through", `json:"-"`, "user_id", "userId"},
		{"internal reserved falls through", `json:"XXX_sizecache"`, "size_cache", "sizeCache"},
		{"protobuf embedded name", `protobuf:"bytes,1,opt,name=user_id,json=userId"`, "UserId", "userId"},
		{"omit then protobuf", `json:"-" protobuf:"bytes,1,opt,json=uid"`, "UserId", "uid"},
		{"no tag snake_case", "", "user_id", "userId"},
		{"no tag plain", "", "Name", "Name"},
		{"multi segment snake", "", "last_seen_at", "lastSeenAt"},
		{"validate tag only", `validate:"required"`, "Email", "Email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveWireName(tt.tag, tt.field))
		})
	}
}

func TestDeriveWireName(t *testing.T) {
	assert.Equal(t, "userId", deriveWireName("user_id"))
	assert.Equal(t, "plain", deriveWireName("plain"))
	assert.Equal(t, "aBC", deriveWireName("a_b_c"))
}
