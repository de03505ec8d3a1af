package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNotifierRegistry(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		check   func(t *testing.T, r *NotifierRegistry)
		wantErr string
	}{
		{
			name: "recipients keep order and duplicates",
			yaml: `
myproj:
  recipients: [a@x.com, b@x.com, a@x.com]
  from: ci@x.com
`,
			check: func(t *testing.T, r *NotifierRegistry) {
				e, ok := r.Get("myproj")
				require.True(t, ok)
				assert.Equal(t, []string{"a@x.com", "b@x.com", "a@x.com"}, e.Recipients)
				assert.Equal(t, "ci@x.com", e.From)
			},
		},
		{
			name: "env interpolation splits comma lists",
			yaml: `
team:
  recipients: ["${ENV:TEAM_LIST}", lead@x.com]
`,
			env: map[string]string{"TEAM_LIST": "one@x.com, two@x.com"},
			check: func(t *testing.T, r *NotifierRegistry) {
				e, _ := r.Get("team")
				assert.Equal(t, []string{"one@x.com", "two@x.com", "lead@x.com"}, e.Recipients)
				assert.Empty(t, e.From)
			},
		},
		{
			name: "projects sorted",
			yaml: `
zeta: {recipients: [z@x.com]}
alpha: {recipients: [a@x.com]}
`,
			check: func(t *testing.T, r *NotifierRegistry) {
				assert.Equal(t, []string{"alpha", "zeta"}, r.Projects())
				assert.Equal(t, 2, r.Len())
			},
		},
		{
			name: "missing env var",
			yaml: `
team:
  from: "${ENV:BUILDNOTIFY_TEST_UNSET_VAR}"
`,
			wantErr: `required env var "BUILDNOTIFY_TEST_UNSET_VAR" is not set`,
		},
		{
			name:    "invalid yaml",
			yaml:    "myproj: [unclosed",
			wantErr: "parsing notifier registry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "notifiers.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0600))

			r, err := LoadNotifierRegistry(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, r)
		})
	}
}

func TestLoadNotifierRegistry_MissingFile(t *testing.T) {
	r, err := LoadNotifierRegistry(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Projects())
}

func TestInterpolateEnv(t *testing.T) {
	t.Setenv("BN_HOST", "ci.example.com")

	got, err := interpolateEnv("builds@${ENV:BN_HOST}")
	require.NoError(t, err)
	assert.Equal(t, "builds@ci.example.com", got)

	got, err = interpolateEnv("plain@x.com")
	require.NoError(t, err)
	assert.Equal(t, "plain@x.com", got)
}
