package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		title, id, want string
	}{
		{"Example", "3f2a9c1d-1111-2222", "example-3f2a9c1d"},
		{"Hello, World! (2026)", "ab", "hello-world-2026-ab"},
		{"  Café  au lait ", "", "café-au-lait"},
		{"", "12345678-9", "12345678"},
		{"???", "", "note"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Filename(tt.title, tt.id), tt.title)
	}
}

func TestFilename_TruncatesLongTitles(t *testing.T) {
	long := "word word word word word word word word word word word word word word word word"
	name := Filename(long, "id")
	assert.LessOrEqual(t, len(name), maxSlugLen+len("-id"))
	assert.NotContains(t, name, "--")
}

func TestWriteNote(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w, err := New(dir)
	require.NoError(t, err)

	path, err := w.WriteNote("Example", "abcdef0123", []byte("body"), ".md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "example-abcdef01.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "body", string(data))
}
