package source

import (
	"context"
	"io"
	"os"

	"github.com/matzehuels/mutuals/pkg/errors"
	"github.com/matzehuels/mutuals/pkg/membership"
)

// File reads a snapshot from a JSON file of the form
//
//	{"<group>": {"<member id>": {"mutual_servers": ["<group>", ...]}, ...}, ...}
type File struct {
	path string
}

// NewFile creates a file source.
func NewFile(path string) *File { return &File{path: path} }

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Name implements Source.
func (f *File) Name() string { return f.path }

// Load implements Source.
func (f *File) Load(ctx context.Context) (membership.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := os.Open(f.path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "snapshot %s", f.path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "open %s", f.path)
	}
	defer r.Close()

	s, err := membership.ReadSnapshot(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read snapshot %s", f.path)
	}
	return s, nil
}

// ReadJSON decodes a snapshot from r. It does not close r.
func ReadJSON(r io.Reader) (membership.Snapshot, error) {
	s, err := membership.ReadSnapshot(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read snapshot")
	}
	return s, nil
}

var _ Source = (*File)(nil)
