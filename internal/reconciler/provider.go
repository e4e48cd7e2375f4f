package reconciler

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"voucher-reconciliation-service/internal/exports"
	"voucher-reconciliation-service/internal/models"
	"voucher-reconciliation-service/pkg/errors"
	"voucher-reconciliation-service/pkg/logger"
)

// DirectoryProvider serves pre-produced ledger exports from a directory,
// one "<bilagsnummer>.txt" file per voucher. The files stay on disk after a
// run; their lifecycle belongs to whatever produced them.
type DirectoryProvider struct {
	dir    string
	logger logger.Logger
}

// NewDirectoryProvider creates a provider reading exports from dir.
func NewDirectoryProvider(dir string) (*DirectoryProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, dir, err)
		}
		return nil, errors.FileError(errors.CodeFileRead, dir, err)
	}
	if !info.IsDir() {
		return nil, errors.FileError(errors.CodeFileRead, dir, nil).
			WithSuggestion("the export path must be a directory of per-voucher export files")
	}

	return &DirectoryProvider{
		dir:    dir,
		logger: logger.GetGlobalLogger().WithComponent("export_provider"),
	}, nil
}

// Fetch opens the export file for the given voucher, decoded from the
// ledger's ANSI encoding. Closing the returned reader closes the file.
func (p *DirectoryProvider) Fetch(ctx context.Context, bilag *models.Bilag) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.InternalError("export_fetch", err)
	}

	path := filepath.Join(p.dir, bilag.Bilagsnummer+".txt")
	p.logger.WithField("path", path).Debug("Opening export file")

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err).
				WithContext("bilagsnummer", bilag.Bilagsnummer)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeFileRead, path, err)
	}

	return &decodedFile{reader: exports.NewANSIReader(file), file: file}, nil
}

// decodedFile pairs the decoding reader with the file handle it wraps.
type decodedFile struct {
	reader io.Reader
	file   *os.File
}

func (d *decodedFile) Read(p []byte) (int, error) {
	return d.reader.Read(p)
}

func (d *decodedFile) Close() error {
	return d.file.Close()
}
