package store

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStoreListSorted(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "in/b.xlsx", []byte("b"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "in/a.xlsx", []byte("a"), 0o644))
	require.NoError(t, fs.MkdirAll("in/archive", 0o755))

	s := NewFSStore(fs)
	entries, err := s.List("in")
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Name: "a.xlsx"},
		{Name: "archive", IsDir: true},
		{Name: "b.xlsx"},
	}, entries)
}

func TestFSStoreListMissingDir(t *testing.T) {
	s := NewFSStore(afero.NewMemMapFs())
	_, err := s.List("nowhere")
	assert.Error(t, err)
}

func TestCopyAndUpload(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewFSStore(fs)

	require.NoError(t, Upload(s, bytes.NewReader([]byte("payload")), "src/file.xlsx"))
	require.NoError(t, s.Mkdir("dst/sub"))
	require.NoError(t, Copy(s, "src/file.xlsx", "dst/sub/file.xlsx"))

	r, err := s.Open("dst/sub/file.xlsx")
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	// The source stays in place after a copy.
	ok, err := afero.Exists(fs, "src/file.xlsx")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateTruncates(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewFSStore(fs)
	require.NoError(t, Upload(s, bytes.NewReader([]byte("long content")), "f"))
	require.NoError(t, Upload(s, bytes.NewReader([]byte("short")), "f"))

	data, err := afero.ReadFile(fs, "f")
	require.NoError(t, err)
	assert.Equal(t, "short", string(data))
}

func TestHasExtension(t *testing.T) {
	assert.True(t, HasExtension("report.xlsx", ".xlsx"))
	assert.True(t, HasExtension("REPORT.XLSX", ".xlsx"))
	assert.False(t, HasExtension("report.xls", ".xlsx"))
	assert.False(t, HasExtension("xlsx", ".xlsx"))
}

func TestSMBPath(t *testing.T) {
	assert.Equal(t, `reports\cards`, smbPath("reports/cards"))
	assert.Equal(t, `reports\cards`, smbPath("/reports/cards/"))
	assert.Equal(t, "", smbPath("."))
}
