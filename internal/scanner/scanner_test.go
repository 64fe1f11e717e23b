package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "OrderMapper.xml"), "<mapper/>")
	writeFile(t, filepath.Join(root, "sub", "CustomerMapper.XML"), "<mapper/>")
	writeFile(t, filepath.Join(root, "sub", "notes.txt"), "skip me")
	writeFile(t, filepath.Join(root, "target", "Generated.xml"), "<mapper/>")
	writeFile(t, filepath.Join(root, "sub", "build", "Out.xml"), "<mapper/>")

	files, err := Discover(root, []string{"target", "build"}, []string{".xml"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "OrderMapper.xml"),
		filepath.Join(root, "sub", "CustomerMapper.XML"),
	}, files, "excluded dirs pruned at any depth, extension matched case-insensitively")
}

func TestDiscover_ExtensionNormalization(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.xml"), "x")
	writeFile(t, filepath.Join(root, "b.sqlmap"), "x")

	files, err := Discover(root, nil, []string{"xml", " .sqlmap "})
	require.NoError(t, err)
	assert.Len(t, files, 2, "extensions accepted with or without leading dot")
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), nil, []string{".xml"})
	assert.Error(t, err)
}

func TestDiscover_Deterministic(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"c.xml", "a.xml", "b.xml"} {
		writeFile(t, filepath.Join(root, name), "x")
	}

	first, err := Discover(root, nil, []string{".xml"})
	require.NoError(t, err)
	second, err := Discover(root, nil, []string{".xml"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{
		filepath.Join(root, "a.xml"),
		filepath.Join(root, "b.xml"),
		filepath.Join(root, "c.xml"),
	}, first)
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"no terminator", "abc", []string{"abc"}},
		{"unix", "a\nb\n", []string{"a\n", "b\n"}},
		{"windows", "a\r\nb\r\n", []string{"a\r\n", "b\r\n"}},
		{"no trailing newline", "a\nb", []string{"a\n", "b"}},
		{"blank lines", "\n\n", []string{"\n", "\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitLines(tt.in))
		})
	}
}
