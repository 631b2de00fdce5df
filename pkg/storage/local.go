// Package storage keeps uploaded files on a local or in-memory filesystem.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Local writes files under a root directory and returns URLs below a public
// prefix that the HTTP server serves statically.
type Local struct {
	fs           afero.Fs
	root         string
	publicPrefix string
	logger       zerolog.Logger
	newID        func() string
}

// NewLocal creates the root directory when needed.
func NewLocal(fs afero.Fs, root, publicPrefix string, logger zerolog.Logger) (*Local, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("storage root must be provided")
	}
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &Local{
		fs:           fs,
		root:         root,
		publicPrefix: "/" + strings.Trim(publicPrefix, "/"),
		logger:       logger.With().Str("component", "local_storage").Logger(),
		newID:        func() string { return uuid.NewString() },
	}, nil
}

// Upload stores reader under a unique name derived from name.
func (l *Local) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stored := l.newID() + "-" + filepath.Base(name)
	target := filepath.Join(l.root, stored)

	file, err := l.fs.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", stored, err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		_ = l.fs.Remove(target)
		return "", fmt.Errorf("write %s: %w", stored, err)
	}
	if err := file.Close(); err != nil {
		_ = l.fs.Remove(target)
		return "", fmt.Errorf("close %s: %w", stored, err)
	}

	l.logger.Debug().Str("file", stored).Msg("file stored")
	return path.Join(l.publicPrefix, stored), nil
}
