package fsxlocal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Abraxas-365/resumelens/pkg/fsx"
)

type Reader struct{}

func NewReader() *Reader { return &Reader{} }

func (r *Reader) Open(ctx context.Context, path string) (*fsx.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("open %s: is a directory", path)
	}

	return &fsx.File{
		Name: filepath.Base(path),
		Size: info.Size(),
		Body: f,
	}, nil
}
