// Package scratch manages per-request working directories.
package scratch

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Dir is a uniquely named directory owned by a single request.
// Only fixed, internal file names are ever joined onto it.
type Dir struct {
	path string
}

// New creates a fresh directory under baseDir (os.TempDir() when empty).
// id is embedded in the name to make leftovers traceable to a request.
func New(baseDir, id string) (*Dir, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}

	path, err := os.MkdirTemp(baseDir, "convert-"+id+"-*")
	if err != nil {
		return nil, errors.Wrap(err, "create scratch dir")
	}

	return &Dir{path: path}, nil
}

// Root returns the directory path.
func (d *Dir) Root() string {
	return d.path
}

// Path joins a file name onto the directory.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.path, filepath.Base(name))
}

// Save streams r into name and returns the number of bytes written.
func (d *Dir) Save(name string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(d.Path(name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, errors.Wrap(err, "create scratch file")
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return n, err
	}

	return n, nil
}

// Close removes the directory and everything in it.
func (d *Dir) Close() error {
	return os.RemoveAll(d.path)
}
