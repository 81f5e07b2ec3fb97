// Package resource maps request targets onto files under a document root.
//
// Resolution canonicalizes the requested path (symlinks and ".." segments
// included), refuses anything that lands outside the root or is not
// readable, and turns directories into either their index.html or a
// generated listing.
package resource

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marmos91/dittohttp/pkg/contenttype"
)

// PathMax is the platform path limit the request path is budgeted against.
const PathMax = 4096

// IndexFile is served in place of a directory listing when present.
const IndexFile = "index.html"

// ListingContentType is sent with generated listings.
const ListingContentType = "text/html"

// Resource is something ready to be sent: a file or a rendered listing.
type Resource struct {
	// Path is the canonical filesystem path (the directory for listings).
	Path string

	// LogicalPath is the decoded request path without its leading slash.
	LogicalPath string

	// URLPath is Path relative to the root, slash-separated and rooted at
	// "/". Aliases of one file ("/a/../b", "/./b") share it.
	URLPath string

	ContentType string
	Size        int64
	ModTime     time.Time

	// Body yields exactly Size bytes. Close it when done.
	Body io.ReadCloser

	// Listing is set when Body is a generated directory listing.
	Listing bool
}

// Close releases the body.
func (r *Resource) Close() error {
	if r.Body == nil {
		return nil
	}
	return r.Body.Close()
}

// Resolver resolves request targets under one canonical root.
type Resolver struct {
	root        string
	maxPath     int
	listingSize int
}

// NewResolver canonicalizes root and returns a resolver for it.
// listingSize is the initial capacity of listing render buffers.
func NewResolver(root string, listingSize int) (*Resolver, error) {
	canonical, err := canonicalize(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("stat root %s: %w", canonical, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", canonical)
	}

	return &Resolver{
		root:        canonical,
		maxPath:     PathMax - len(canonical),
		listingSize: listingSize,
	}, nil
}

// Root returns the canonical root directory.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve turns target, the reconstructed request target, into a Resource.
// All failures are *ResolveError.
func (r *Resolver) Resolve(target string) (*Resource, error) {
	logical, err := r.requestPath(target)
	if err != nil {
		return nil, err
	}

	full := r.root
	if logical != "" {
		full = r.root + "/" + logical
	}

	canonical, err := canonicalize(full)
	if err != nil {
		return nil, newError(ErrNotFound, "bad path", full, err)
	}
	if !r.contains(canonical) {
		return nil, newError(ErrForbidden, "outside root", canonical, nil)
	}
	if err := readable(canonical); err != nil {
		return nil, newError(ErrForbidden, "permission", canonical, err)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return nil, newError(ErrInternal, "stat", canonical, err)
	}
	if !info.IsDir() {
		return r.openFile(canonical, logical)
	}

	// An index.html that is not a regular file is treated as absent.
	index, err := canonicalize(filepath.Join(canonical, IndexFile))
	if err == nil && isRegular(index) {
		if !r.contains(index) {
			return nil, newError(ErrForbidden, "outside root", index, nil)
		}
		if err := readable(index); err != nil {
			return nil, newError(ErrForbidden, "permission", index, err)
		}
		return r.openFile(index, logical)
	}

	return r.listing(canonical, logical)
}

// requestPath strips the leading slash and percent-decodes target. The
// bare root target yields "".
func (r *Resolver) requestPath(target string) (string, error) {
	if target == "/" {
		return "", nil
	}

	p := strings.TrimPrefix(target, "/")
	if len(p) >= r.maxPath {
		return "", newError(ErrPathTooLong, "path too long", "", nil)
	}
	if p == "" {
		return "", newError(ErrBadRequest, "empty path", "", nil)
	}
	if strings.HasSuffix(p, "\r") || strings.HasSuffix(p, "\n") {
		return "", newError(ErrBadRequest, "line ending in path", p, nil)
	}

	decoded, err := url.PathUnescape(p)
	if err != nil {
		return "", newError(ErrBadRequest, "bad escape", p, err)
	}
	if strings.IndexByte(decoded, 0) >= 0 {
		return "", newError(ErrBadRequest, "NUL in path", p, nil)
	}
	return decoded, nil
}

func (r *Resolver) contains(path string) bool {
	if path == r.root {
		return true
	}
	prefix := r.root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

func (r *Resolver) urlPath(canonical string) string {
	rel, err := filepath.Rel(r.root, canonical)
	if err != nil || rel == "." {
		return "/"
	}
	return "/" + filepath.ToSlash(rel)
}

// openFile opens a regular file. Anything else (a FIFO, a device, a socket)
// is refused before open, which could block on it.
func (r *Resolver) openFile(path, logical string) (*Resource, error) {
	if !isRegular(path) {
		return nil, newError(ErrForbidden, "not a regular file", path, nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, newError(ErrInternal, "open", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, newError(ErrInternal, "stat", path, err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, newError(ErrForbidden, "not a regular file", path, nil)
	}

	return &Resource{
		Path:        path,
		LogicalPath: logical,
		URLPath:     r.urlPath(path),
		ContentType: contenttype.ForPath(path),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Body:        f,
	}, nil
}

func (r *Resolver) listing(dir, logical string) (*Resource, error) {
	entries, err := ReadEntries(dir, dir != r.root)
	if err != nil {
		return nil, newError(ErrInternal, "read directory", dir, err)
	}

	page := RenderListing(logical, entries, r.listingSize)
	return &Resource{
		Path:        dir,
		LogicalPath: logical,
		URLPath:     r.urlPath(dir),
		ContentType: ListingContentType,
		Size:        int64(len(page)),
		ModTime:     time.Now(),
		Body:        io.NopCloser(bytes.NewReader(page)),
		Listing:     true,
	}, nil
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// canonicalize resolves symlinks and relative segments of path.
func canonicalize(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}
