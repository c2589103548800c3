// Package fsx opens source files for upload from the local disk or from S3.
package fsx

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var ErrUnsupportedScheme = errors.New("fsx: unsupported path scheme")

// File is an opened source file. Size is -1 when unknown.
type File struct {
	Name string
	Size int64
	Body io.ReadCloser
}

func (f *File) Close() error {
	if f == nil || f.Body == nil {
		return nil
	}
	return f.Body.Close()
}

type FileReader interface {
	Open(ctx context.Context, path string) (*File, error)
}

// Router dispatches s3:// paths to the S3 reader and everything else to the
// local reader. A nil reader makes its scheme unsupported.
type Router struct {
	Local FileReader
	S3    FileReader
}

func NewRouter(local, s3 FileReader) *Router {
	return &Router{Local: local, S3: s3}
}

func (r *Router) Open(ctx context.Context, p string) (*File, error) {
	if _, _, ok := ParseS3URI(p); ok {
		if r.S3 == nil {
			return nil, ErrUnsupportedScheme
		}
		return r.S3.Open(ctx, p)
	}
	if strings.Contains(p, "://") || r.Local == nil {
		return nil, ErrUnsupportedScheme
	}
	return r.Local.Open(ctx, p)
}

// ParseS3URI splits s3://bucket/key/parts into bucket and key.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// BaseName returns the last path element for both local and s3 paths.
func BaseName(p string) string {
	if _, key, ok := ParseS3URI(p); ok {
		return path.Base(key)
	}
	return path.Base(strings.ReplaceAll(p, "\\", "/"))
}
