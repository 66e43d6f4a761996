// Package audio handles upload validation and normalization of voice
// recordings ahead of transcription.
package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxUploadBytes is the hard cap on uploaded audio size.
const MaxUploadBytes = 25 << 20

var allowedExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
}

// ValidationError rejects an upload before any processing happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid audio upload: " + e.Reason
}

// Asset is an uploaded recording spooled to a scoped temporary file. Callers
// own the file and must Remove it when the request completes.
type Asset struct {
	Path     string
	Filename string
	Ext      string
	Size     int64
}

func (a *Asset) Remove() error {
	if a == nil || a.Path == "" {
		return nil
	}
	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Ingest validates an upload and spools it to a temporary file. The size cap
// is enforced twice: against the declared size up front and against the
// actual bytes read, so a lying Content-Length cannot slip past.
func Ingest(filename string, declaredSize int64, r io.Reader) (*Asset, error) {
	if r == nil {
		return nil, &ValidationError{Reason: "no file provided"}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, &ValidationError{Reason: fmt.Sprintf("unsupported extension %q, allowed: wav, mp3, m4a, flac, ogg", ext)}
	}

	if declaredSize > MaxUploadBytes {
		return nil, &ValidationError{Reason: fmt.Sprintf("file exceeds %d byte limit", MaxUploadBytes)}
	}

	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}

	written, err := io.Copy(tmp, io.LimitReader(r, MaxUploadBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("spooling upload: %w", err)
	}
	if written > MaxUploadBytes {
		os.Remove(tmp.Name())
		return nil, &ValidationError{Reason: fmt.Sprintf("file exceeds %d byte limit", MaxUploadBytes)}
	}

	return &Asset{
		Path:     tmp.Name(),
		Filename: filename,
		Ext:      ext,
		Size:     written,
	}, nil
}
