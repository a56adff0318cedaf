package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliograph/heliograph/pkg/errors"
)

func TestWriterWriteAndRead(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "artifacts"))

	path, err := w.Write("Report_1.pdf", []byte("%PDF-1.4 test"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(w.Dir(), "Report_1.pdf"), path)

	data, err := w.Read("Report_1.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 test"), data)
}

func TestWriterCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "artifacts")
	w := NewWriter(dir)

	_, err := w.Write("Report_1.pdf", []byte("data"))
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriterRejectsTraversal(t *testing.T) {
	w := NewWriter(t.TempDir())

	for _, name := range []string{"", "../escape.pdf", "a/b.pdf", "..", "dir/../x.pdf"} {
		_, err := w.Write(name, []byte("data"))
		require.Error(t, err, "name %q", name)
		assert.True(t, errors.HasCode(err, errors.ErrCodeValidation), "name %q", name)
	}
}

func TestWriterReadMissing(t *testing.T) {
	w := NewWriter(t.TempDir())

	_, err := w.Read("Report_99.pdf")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestWriterDefaultDir(t *testing.T) {
	assert.Equal(t, DefaultDir, NewWriter("").Dir())
}
