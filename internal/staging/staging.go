// Package staging writes inbound upload streams to ephemeral local storage.
// A staged file exists for exactly one request: it is created here and
// released by the remote store client once the upload attempt finishes.
package staging

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Stager stages an inbound byte stream under a collision-resistant local path.
type Stager interface {
	// Stage writes r to a new file and returns its path. suggestedName is the
	// caller-supplied label ("default" when empty); originalName contributes
	// only its extension.
	Stage(r io.Reader, suggestedName, originalName string) (string, error)
}

// DiskStager implements Stager on a single local directory.
// Safe for concurrent use: generated names never collide, so no locking is
// needed across in-flight requests.
type DiskStager struct {
	dir string
}

// NewDiskStager ensures dir exists (create-if-absent, idempotent) and returns
// a ready DiskStager.
func NewDiskStager(dir string) (*DiskStager, error) {
	if dir == "" {
		return nil, errors.New("staging dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir %q: %w", dir, err)
	}
	return &DiskStager{dir: dir}, nil
}

// Stage writes the stream to <dir>/<sanitized name>-<timestamp>-<random><ext>.
// The file is created with O_EXCL and the name is regenerated on collision,
// so concurrent calls with identical names always yield distinct paths.
func (s *DiskStager) Stage(r io.Reader, suggestedName, originalName string) (string, error) {
	if r == nil {
		return "", errors.New("staging: reader is nil")
	}

	base := sanitize(suggestedName)
	if base == "" {
		base = "default"
	}
	ext := sanitizeExt(filepath.Ext(originalName))

	for attempt := 0; attempt < 5; attempt++ {
		name := fmt.Sprintf("%s-%d-%s%s", base, time.Now().UnixMilli(), randomSuffix(), ext)
		path := filepath.Join(s.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("staging: create %q: %w", name, err)
		}

		if _, err := io.Copy(f, r); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("staging: write %q: %w", name, err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", fmt.Errorf("staging: close %q: %w", name, err)
		}
		return path, nil
	}
	return "", errors.New("staging: could not generate a unique file name")
}

// sanitize reduces an untrusted label to [A-Za-z0-9._-]; path separators and
// traversal sequences cannot survive.
func sanitize(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), ".")
}

func sanitizeExt(ext string) string {
	clean := sanitize(ext)
	if clean == "" {
		return ""
	}
	return "." + clean
}

func randomSuffix() string {
	var buf [6]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failure is effectively fatal elsewhere; fall back to
		// the O_EXCL retry loop for uniqueness.
		return fmt.Sprintf("%d", time.Now().UnixNano()%1_000_000_000)
	}
	return hex.EncodeToString(buf[:])
}
