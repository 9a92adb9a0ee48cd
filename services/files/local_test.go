package filesvc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "notes.txt", "text/plain", strings.NewReader("review notes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"), url)
	assert.True(t, strings.HasSuffix(url, "-notes.txt"), url)

	// the file landed on disk with the served name
	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, "review notes", string(data))

	// two saves of the same name never collide
	again, err := store.Save(context.Background(), "notes.txt", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotEqual(t, url, again)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "notes.txt", want: "notes.txt"},
		{in: " ../../etc/passwd ", want: "passwd"},
		{in: "my report (final).pdf", want: "my_report__final_.pdf"},
		{in: "", want: "file"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.in), tt.in)
	}
}
