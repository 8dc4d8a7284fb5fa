package archive

import (
	"archive/zip"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jsphweid/loopgen/file"
	"github.com/jsphweid/loopgen/model"
	"github.com/pkg/errors"
)

// Packager bundles stem files into a zip archive and removes the scratch
// files once the archive is in place.
type Packager struct {
	logger *slog.Logger
}

func NewPackager(logger *slog.Logger) *Packager {
	return &Packager{logger: logger}
}

// Package writes stems into zipPath under their base names, then deletes the
// stems and scratchDir. With no stems nothing is written and "" is returned.
// A failed write returns *model.ArchiveWriteError and leaves the stems alone.
// Cleanup failures are only logged.
func (p *Packager) Package(stems []string, zipPath, scratchDir string) (string, error) {
	if len(stems) == 0 {
		return "", nil
	}

	err := file.WriteAtomic(zipPath, func(f *os.File) error {
		return writeZip(f, stems)
	})
	if err != nil {
		return "", &model.ArchiveWriteError{Path: zipPath, Cause: err}
	}

	p.cleanup(stems, scratchDir)
	return zipPath, nil
}

func writeZip(w io.Writer, paths []string) error {
	zw := zip.NewWriter(w)
	for _, path := range paths {
		if err := addFile(zw, path); err != nil {
			zw.Close()
			return err
		}
	}
	return errors.Wrap(zw.Close(), "finish zip")
}

func addFile(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open stem")
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return errors.Wrap(err, "stat stem")
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return errors.Wrap(err, "zip header")
	}
	header.Name = filepath.Base(path)
	header.Method = zip.Deflate

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return errors.Wrapf(err, "add %s", header.Name)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrapf(err, "copy %s", header.Name)
	}
	return nil
}

func (p *Packager) cleanup(stems []string, scratchDir string) {
	for _, path := range stems {
		if err := os.Remove(path); err != nil {
			p.logger.Warn("could not remove stem", "path", path, "err", err)
		}
	}
	if scratchDir == "" {
		return
	}
	if err := os.Remove(scratchDir); err != nil {
		p.logger.Warn("could not remove stems dir", "dir", scratchDir, "err", err)
	}
}
