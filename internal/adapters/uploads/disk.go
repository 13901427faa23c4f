package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is where the HTTP server exposes the upload directory.
const URLPrefix = "/uploads/"

// allowed maps accepted image content types to the extension stored on disk.
var allowed = map[string]string{
	"image/png":  "png",
	"image/jpg":  "jpg",
	"image/jpeg": "jpeg",
}

// ExtForContentType returns the stored extension, or false for types that are
// not accepted as profile photos.
func ExtForContentType(ct string) (string, bool) {
	ext, ok := allowed[strings.ToLower(strings.TrimSpace(ct))]
	return ext, ok
}

// DiskStore writes uploads under dir with random names, keeping only the
// original extension.
type DiskStore struct{ dir string }

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	name := uuid.NewString()
	if ext := strings.TrimPrefix(path.Ext(filename), "."); ext != "" {
		name += "." + ext
	}

	f, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", err
	}
	tmp := f.Name()
	_, err = io.Copy(f, readerCtx{ctx: ctx, r: r})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, filepath.Join(s.dir, name))
	}
	if err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("save upload: %w", err)
	}
	return URLPrefix + name, nil
}

// readerCtx stops a copy once the request is gone.
type readerCtx struct {
	ctx context.Context
	r   io.Reader
}

func (rc readerCtx) Read(p []byte) (int, error) {
	if err := rc.ctx.Err(); err != nil {
		return 0, err
	}
	return rc.r.Read(p)
}
