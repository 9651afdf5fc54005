// Package assets stores uploaded files (logos, artwork) on an afero filesystem.
//
// Uploads are two-phase: Ticket reserves a target and returns an upload URL,
// Put writes the raw bytes to it.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/colonyops/wiz/internal/core/gateway"
)

// Scheme prefixes every upload URL issued by a Store.
const Scheme = "asset://"

// DefaultMaxSize caps a single upload.
const DefaultMaxSize int64 = 10 << 20

var (
	ErrBadURL   = errors.New("unknown upload url")
	ErrTooLarge = errors.New("file too large")
)

var allowedTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/webp":      true,
	"image/bmp":       true,
	"image/svg+xml":   true,
	"application/pdf": true,
}

// Store writes uploads under Root on Fs.
type Store struct {
	Fs      afero.Fs
	Root    string
	MaxSize int64
}

// New returns a store rooted at root.
func New(fs afero.Fs, root string) *Store {
	return &Store{Fs: fs, Root: root, MaxSize: DefaultMaxSize}
}

// Ticket validates meta and reserves an upload target.
func (s *Store) Ticket(meta gateway.AssetMeta) (gateway.UploadTicket, error) {
	name := Sanitize(meta.Filename)
	if name == "" {
		return gateway.UploadTicket{}, fmt.Errorf("%w: filename is required", gateway.ErrValidation)
	}
	if !allowedTypes[strings.ToLower(meta.ContentType)] {
		return gateway.UploadTicket{}, fmt.Errorf("%w: unsupported content type %q", gateway.ErrValidation, meta.ContentType)
	}
	if s.MaxSize > 0 && meta.Size > s.MaxSize {
		return gateway.UploadTicket{}, fmt.Errorf("%w: %w: %s exceeds %s",
			gateway.ErrValidation, ErrTooLarge, humanize.Bytes(uint64(meta.Size)), humanize.Bytes(uint64(s.MaxSize)))
	}

	id := uuid.NewString()
	return gateway.UploadTicket{
		UploadURL:         Scheme + id + "/" + name,
		UploadID:          id,
		SanitizedFilename: name,
	}, nil
}

// Put copies r to the target named by uploadURL.
func (s *Store) Put(ctx context.Context, uploadURL string, r io.Reader) error {
	p, err := s.Path(uploadURL)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.Fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	src := r
	if s.MaxSize > 0 {
		src = io.LimitReader(r, s.MaxSize+1)
	}

	f, err := s.Fs.Create(p)
	if err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = s.Fs.Remove(p)
		return fmt.Errorf("write upload: %w", err)
	}
	if s.MaxSize > 0 && n > s.MaxSize {
		_ = s.Fs.Remove(p)
		return fmt.Errorf("%w: more than %s", ErrTooLarge, humanize.Bytes(uint64(s.MaxSize)))
	}
	return nil
}

// Path maps an upload URL to its file path.
func (s *Store) Path(uploadURL string) (string, error) {
	rest, ok := strings.CutPrefix(uploadURL, Scheme)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrBadURL, uploadURL)
	}
	id, name, ok := strings.Cut(rest, "/")
	if !ok || id == "" || name == "" || Sanitize(name) != name {
		return "", fmt.Errorf("%w: %s", ErrBadURL, uploadURL)
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: %s", ErrBadURL, uploadURL)
	}
	return filepath.Join(s.Root, id, name), nil
}

// Sanitize reduces a client filename to a safe base name of [a-z0-9._-].
func Sanitize(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.Trim(strings.ReplaceAll(b.String(), "-.", "."), "-.")
}
