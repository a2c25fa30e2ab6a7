package models

import (
	"errors"
	"os"
	"sync"
)

// DumpKind tells whether a dump's file belongs to the run.
type DumpKind int

const (
	// OwnedTemporary dumps were fetched by the run and are removed on release.
	OwnedTemporary DumpKind = iota
	// ExternalPath dumps were supplied by the caller and are never removed.
	ExternalPath
)

func (k DumpKind) String() string {
	switch k {
	case OwnedTemporary:
		return "owned"
	case ExternalPath:
		return "external"
	default:
		return "unknown"
	}
}

// AudioDump is a locally stored audio source for packaging.
type AudioDump struct {
	kind DumpKind
	path string

	// Source is the URL the dump was fetched from, empty for external files.
	Source string
	// Bytes is the number of bytes written by the fetcher.
	Bytes int64
	// Resumes counts the attempts that continued from a partial transfer.
	Resumes int

	releaseOnce sync.Once
	releaseErr  error
}

// NewOwnedDump wraps a temporary file that the run is responsible for.
func NewOwnedDump(path, source string) *AudioDump {
	return &AudioDump{kind: OwnedTemporary, path: path, Source: source}
}

// NewExternalDump wraps a caller supplied file.
func NewExternalDump(path string) *AudioDump {
	return &AudioDump{kind: ExternalPath, path: path}
}

// Path returns the location of the audio data.
func (d *AudioDump) Path() string { return d.path }

// Kind returns the ownership variant of the dump.
func (d *AudioDump) Kind() DumpKind { return d.kind }

// Owned reports whether Release deletes the file.
func (d *AudioDump) Owned() bool { return d.kind == OwnedTemporary }

// Release deletes an owned dump. It is safe to call more than once.
func (d *AudioDump) Release() error {
	if d == nil || d.kind != OwnedTemporary {
		return nil
	}
	d.releaseOnce.Do(func() {
		if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			d.releaseErr = err
		}
	})
	return d.releaseErr
}

// ReleaseAll releases every dump and returns the joined errors.
func ReleaseAll(dumps []*AudioDump) error {
	var errs []error
	for _, d := range dumps {
		if err := d.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
