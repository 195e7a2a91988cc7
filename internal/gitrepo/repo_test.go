package gitrepo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantName  string
		wantClone string
		wantErr   bool
	}{
		{
			name:      "https",
			url:       "https://github.com/acme/service",
			wantOwner: "acme",
			wantName:  "service",
			wantClone: "https://github.com/acme/service.git",
		},
		{
			name:      "https with .git",
			url:       "https://gitlab.example.com/acme/service.git",
			wantOwner: "acme",
			wantName:  "service",
			wantClone: "https://gitlab.example.com/acme/service.git",
		},
		{
			name:      "nested group",
			url:       "https://gitlab.example.com/platform/backend/service",
			wantOwner: "platform/backend",
			wantName:  "service",
			wantClone: "https://gitlab.example.com/platform/backend/service.git",
		},
		{
			name:      "ssh",
			url:       "git@github.com:acme/service.git",
			wantOwner: "acme",
			wantName:  "service",
			wantClone: "https://github.com/acme/service.git",
		},
		{
			name:    "missing path",
			url:     "https://github.com/",
			wantErr: true,
		},
		{
			name:    "ssh without colon",
			url:     "git@github.com/acme/service",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseRepoURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, info.Owner)
			assert.Equal(t, tt.wantName, info.Name)
			assert.Equal(t, tt.wantClone, info.CloneURL)
			assert.Equal(t, "main", info.Branch)
		})
	}
}
