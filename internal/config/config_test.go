package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("FINTRACK_TEST_DIR", "/tmp/fintrack")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "memory", input: ":memory:", want: ":memory:"},
		{name: "tilde only", input: "~", want: home},
		{name: "tilde prefix", input: "~/data/fintrack.db", want: filepath.Join(home, "data", "fintrack.db")},
		{name: "env var", input: "$FINTRACK_TEST_DIR/fintrack.db", want: "/tmp/fintrack/fintrack.db"},
		{name: "absolute", input: "/var/lib/fintrack.db", want: "/var/lib/fintrack.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}

func TestDatabasePath(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	t.Setenv("HOME", "/home/tester")

	assert.Equal(t, "/home/tester/.local/share/fintrack/fintrack.db", DatabasePath(v))

	v.Set(KeyDatabasePath, "~/books.db")
	assert.Equal(t, "/home/tester/books.db", DatabasePath(v))

	v.Set(KeyDatabasePath, MemoryDatabase)
	assert.Equal(t, MemoryDatabase, DatabasePath(v))
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	assert.Equal(t, DefaultLogLevel, v.GetString(KeyLogLevel))
	assert.Equal(t, DefaultLogFormat, v.GetString(KeyLogFormat))
	assert.Equal(t, DefaultSystemAppearance, v.GetString(KeySystemAppearance))
	assert.Equal(t, DefaultServerAddr, v.GetString(KeyServerAddr))
}
