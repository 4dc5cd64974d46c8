package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "separate value",
			args:         []string{"-c", "conf.json", "-a", ":8080"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "equals form",
			args:         []string{"-config=alt.json", "-a", ":8080"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-config=alt.json"},
		},
		{
			name:         "order preserved",
			args:         []string{"-s", "secret", "-a", ":8080", "-d", "dsn"},
			allowedFlags: []string{"-a", "-s"},
			want:         []string{"-s", "secret", "-a", ":8080"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "-y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "trailing flag without value",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "flag followed by flag",
			args:         []string{"-c", "-a"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"testbin"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestJsonConfigFlags(t *testing.T) {
	withArgs(t, "-a", ":8080", "-c", "server.json")
	assert.Equal(t, "server.json", JsonConfigFlags())

	withArgs(t, "-config=other.json")
	assert.Equal(t, "other.json", JsonConfigFlags())

	withArgs(t, "-a", ":8080")
	assert.Equal(t, "", JsonConfigFlags())
}

func TestEnvFileFlags(t *testing.T) {
	withArgs(t, "-env-file", "prod.env", "-s", "secret")
	assert.Equal(t, "prod.env", EnvFileFlags())

	withArgs(t)
	assert.Equal(t, "", EnvFileFlags())
}
