// Package resolver turns a stored artifact record into a fetchable download
// URL. Resolution is a pure function over the record: the strategies are
// string transforms on the stored locators and never call the provider.
//
// The storage-path and hash-segment strategies assume the provider's current
// URL format (the "upload/" path marker and 32-hex-char content hashes).
// That format is observed, not documented by the provider; keeping every
// assumption inside this package is what makes it swappable.
package resolver

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"bookvault/internal/model"
)

var (
	// ErrMalformedLocator is returned when a storage locator lacks the
	// "upload/" path marker the storage-path strategy extracts against.
	ErrMalformedLocator = errors.New("malformed storage locator")
	// ErrUnresolvableLocator is returned when no strategy can derive a
	// download URL from the record.
	ErrUnresolvableLocator = errors.New("unresolvable storage locator")
)

// Variant identifies which resolution strategy applies to a record.
type Variant int

const (
	// Passthrough returns the download locator derived at ingest time.
	Passthrough Variant = iota
	// StoragePath extracts the asset ID from the path segment following the
	// "upload/" marker in the storage locator.
	StoragePath
	// HashSegment extracts a 32-lowercase-hex path segment (content hash)
	// from the storage locator.
	HashSegment
)

var (
	shareTokenRe = regexp.MustCompile(`/d/([A-Za-z0-9_-]+)`)
	hexSegmentRe = regexp.MustCompile(`^[0-9a-f]{32}$`)
)

// Config holds the endpoints download URLs are derived against.
// All values are injected; the resolver keeps no ambient state.
type Config struct {
	// ConsoleHost and TenantID fill the provider console download template.
	ConsoleHost string
	TenantID    string
	// ShareEndpoint is the export endpoint for caller-supplied sharing links,
	// e.g. "https://drive.google.com/uc".
	ShareEndpoint string
}

// Resolver derives download URLs from artifact records.
type Resolver struct {
	cfg Config
}

// New constructs a Resolver from explicit configuration.
func New(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// VariantFor selects the strategy for a record: passthrough when a derived
// download locator is already populated, otherwise the storage locator's
// shape decides between storage-path and hash-segment extraction.
func VariantFor(a *model.Artifact) Variant {
	switch {
	case a.DownloadURL != "":
		return Passthrough
	case strings.Contains(a.StorageURL, uploadMarker):
		return StoragePath
	default:
		return HashSegment
	}
}

// Resolve produces the user-fetchable download URL for a record.
func (r *Resolver) Resolve(a *model.Artifact) (string, error) {
	switch VariantFor(a) {
	case Passthrough:
		return a.DownloadURL, nil
	case StoragePath:
		assetID, err := ExtractUploadSegment(a.StorageURL)
		if err != nil {
			return "", err
		}
		return r.consoleURL(assetID), nil
	default:
		assetID, err := ExtractHashSegment(a.StorageURL)
		if err != nil {
			return "", err
		}
		return r.consoleURL(assetID), nil
	}
}

// DeriveShareDownload extracts the embedded "/d/<token>" file ID from a
// sharing URL and builds the direct export link. A URL without a token yields
// an empty string, not an error: an absent derived locator is a valid state.
func (r *Resolver) DeriveShareDownload(shareURL string) string {
	if shareURL == "" {
		return ""
	}
	m := shareTokenRe.FindStringSubmatch(shareURL)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%s?export=download&id=%s", r.cfg.ShareEndpoint, m[1])
}

const uploadMarker = "upload/"

// ExtractUploadSegment returns the path segment immediately following the
// "upload/" marker, the provider's asset identifier.
func ExtractUploadSegment(locator string) (string, error) {
	idx := strings.Index(locator, uploadMarker)
	if idx < 0 {
		return "", fmt.Errorf("%w: missing %q marker", ErrMalformedLocator, uploadMarker)
	}
	rest := locator[idx+len(uploadMarker):]
	seg, _, _ := strings.Cut(rest, "/")
	if seg == "" {
		return "", fmt.Errorf("%w: empty segment after %q marker", ErrMalformedLocator, uploadMarker)
	}
	return seg, nil
}

// ExtractHashSegment returns the first path segment that is exactly 32
// lowercase hexadecimal characters (a content hash).
func ExtractHashSegment(locator string) (string, error) {
	for _, seg := range strings.Split(locator, "/") {
		if hexSegmentRe.MatchString(seg) {
			return seg, nil
		}
	}
	return "", fmt.Errorf("%w: no 32-hex-char segment", ErrUnresolvableLocator)
}

func (r *Resolver) consoleURL(assetID string) string {
	return fmt.Sprintf("https://%s/%s/media_explorer_thumbnails/%s/download",
		r.cfg.ConsoleHost, r.cfg.TenantID, assetID)
}
