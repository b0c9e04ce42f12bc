// Package storage holds the quiz material and generated exports on disk.
package storage

import (
	"errors"
	"io"
)

var ErrBadKey = errors.New("storage: invalid key")

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	ReadAll(key string) ([]byte, error)
	Exists(key string) bool
}
