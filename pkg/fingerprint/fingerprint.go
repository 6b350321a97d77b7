// Package fingerprint computes content hashes of files as a side effect
// of reading or writing them, so a file and its fingerprint never come
// from two separate passes over the data.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"

	"github.com/weldbuild/weld/pkg/errors"
)

// File wraps an os.File and feeds every byte that passes through it
// into a SHA-256 hash. A File is opened for reading or for writing and
// refuses operations in the other direction.
type File struct {
	f       *os.File
	h       hash.Hash
	writing bool
}

// Open opens path for reading. Bytes returned by Read are hashed.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "opening %s for fingerprinting", path)
	}
	return &File{f: f, h: sha256.New()}, nil
}

// Create creates or truncates path for writing. Bytes passed to Write
// are hashed.
func Create(path string) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "creating %s for fingerprinting", path)
	}
	return &File{f: f, h: sha256.New(), writing: true}, nil
}

// Read reads from the underlying file, hashing what it returns. Reading
// a File opened with Create is a usage error.
func (f *File) Read(p []byte) (int, error) {
	if f.writing {
		return 0, errors.New(errors.ErrCodeUsage, "fingerprint file %s is write-only", f.f.Name())
	}
	n, err := f.f.Read(p)
	if n > 0 {
		f.h.Write(p[:n])
	}
	return n, err
}

// Write writes to the underlying file, hashing what it wrote. Writing a
// File opened with Open is a usage error.
func (f *File) Write(p []byte) (int, error) {
	if !f.writing {
		return 0, errors.New(errors.ErrCodeUsage, "fingerprint file %s is read-only", f.f.Name())
	}
	n, err := f.f.Write(p)
	if n > 0 {
		f.h.Write(p[:n])
	}
	if err != nil {
		return n, errors.Wrap(errors.ErrCodeInternal, err, "writing %s", f.f.Name())
	}
	return n, nil
}

// Sum returns the lowercase hex SHA-256 of everything read or written
// so far. It may be called before or after Close.
func (f *File) Sum() string {
	return hex.EncodeToString(f.h.Sum(nil))
}

// Name returns the underlying file's path.
func (f *File) Name() string { return f.f.Name() }

// Close closes the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}

// Hash reads path to the end and returns its SHA-256 as lowercase hex.
func Hash(path string) (string, error) {
	f, err := Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(io.Discard, f); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "reading %s", path)
	}
	return f.Sum(), nil
}
