package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLogger_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.log")
	l := NewIsolatedLogger(path)

	l.Info("STREAM", "generation started", map[string]interface{}{"session": "s1"})
	l.Error("STREAM", "generation failed", map[string]interface{}{"error": errors.New("boom")})
	l.Debug("STREAM", "below file level", nil)
	require.NoError(t, l.Sync())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		lines = append(lines, entry)
	}

	require.Len(t, lines, 2)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "STREAM", lines[0]["module"])
	assert.Equal(t, "generation started", lines[0]["message"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("X", "ignored", nil)
	assert.NoError(t, l.Sync())
}
