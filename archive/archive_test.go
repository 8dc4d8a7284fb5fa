package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/loopgen/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPackager() (*Packager, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewPackager(slog.New(slog.NewTextHandler(&buf, nil))), &buf
}

func writeStems(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	var res []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("stem "+name), 0644))
		res = append(res, path)
	}
	return res
}

func TestPackageThreeStems(t *testing.T) {
	out := t.TempDir()
	scratch := filepath.Join(out, "stems-x")
	stems := writeStems(t, scratch, "Kick.wav", "Snare.wav", "HiHat.wav")
	p, _ := newTestPackager()

	zipPath := filepath.Join(out, "loop.zip")
	got, err := p.Package(stems, zipPath, scratch)
	require.NoError(t, err)
	assert.Equal(t, zipPath, got)

	r, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, "stem "+f.Name, string(data))
	}
	assert.Equal(t, []string{"Kick.wav", "Snare.wav", "HiHat.wav"}, names)

	_, err = os.Stat(scratch)
	assert.True(t, os.IsNotExist(err))
	for _, s := range stems {
		_, err = os.Stat(s)
		assert.True(t, os.IsNotExist(err))
	}
}

func TestPackageNoStems(t *testing.T) {
	out := t.TempDir()
	p, _ := newTestPackager()
	got, err := p.Package(nil, filepath.Join(out, "loop.zip"), "")
	require.NoError(t, err)
	assert.Empty(t, got)

	entries, _ := os.ReadDir(out)
	assert.Empty(t, entries)
}

func TestPackageWriteFailureKeepsStems(t *testing.T) {
	out := t.TempDir()
	scratch := filepath.Join(out, "stems-x")
	stems := writeStems(t, scratch, "Kick.wav")
	stems = append(stems, filepath.Join(scratch, "Missing.wav"))
	p, _ := newTestPackager()

	zipPath := filepath.Join(out, "loop.zip")
	_, err := p.Package(stems, zipPath, scratch)

	var archiveErr *model.ArchiveWriteError
	require.True(t, errors.As(err, &archiveErr))
	assert.Equal(t, zipPath, archiveErr.Path)

	_, err = os.Stat(zipPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(stems[0])
	assert.NoError(t, err)
}

func TestPackageCleanupFailureIsLogged(t *testing.T) {
	out := t.TempDir()
	scratch := filepath.Join(out, "stems-x")
	stems := writeStems(t, scratch, "Kick.wav")
	// an extra file keeps the directory from being removed
	writeStems(t, scratch, "stray.txt")
	p, logs := newTestPackager()

	got, err := p.Package(stems, filepath.Join(out, "loop.zip"), scratch)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	assert.Contains(t, logs.String(), "could not remove stems dir")
}
