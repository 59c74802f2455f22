package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepo(t *testing.T) {
	tests := []struct {
		input   string
		owner   string
		repo    string
		wantErr bool
	}{
		{"golang/go", "golang", "go", false},
		{"https://github.com/golang/go", "golang", "go", false},
		{"https://github.com/golang/go.git", "golang", "go", false},
		{"https://www.github.com/golang/go/tree/master", "golang", "go", false},
		{"", "", "", true},
		{"justaname", "", "", true},
		{"https://gitlab.com/group/project", "", "", true},
	}

	for _, tt := range tests {
		owner, repo, err := ParseRepo(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.owner, owner)
		assert.Equal(t, tt.repo, repo)
	}
}
