package resource

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture lays out a document root inside a temp dir that also holds a
// sibling file outside the root.
//
//	<tmp>/outside.txt
//	<tmp>/www/index.html
//	<tmp>/www/style.css
//	<tmp>/www/my file.txt
//	<tmp>/www/docs/a.txt
//	<tmp>/www/docs/B.txt
//	<tmp>/www/docs/sub/
//	<tmp>/www/escape -> <tmp>/outside.txt
func fixture(t *testing.T) (*Resolver, string) {
	t.Helper()
	tmp := t.TempDir()
	root := filepath.Join(tmp, "www")

	write := func(rel, content string) {
		p := filepath.Join(tmp, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	write("outside.txt", "secret")
	write("www/index.html", "<p>home</p>")
	write("www/style.css", "body{}")
	write("www/my file.txt", "spaces")
	write("www/docs/a.txt", "a")
	write("www/docs/B.txt", "bb")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "sub"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(tmp, "outside.txt"), filepath.Join(root, "escape")))

	r, err := NewResolver(root, 64)
	require.NoError(t, err)
	return r, tmp
}

func readAll(t *testing.T, res *Resource) string {
	t.Helper()
	defer res.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(b)
}

func codeOf(t *testing.T, err error) ErrorCode {
	t.Helper()
	var re *ResolveError
	require.True(t, errors.As(err, &re), "expected *ResolveError, got %v", err)
	return re.Code
}

func TestResolve_File(t *testing.T) {
	r, _ := fixture(t)

	res, err := r.Resolve("/style.css")
	require.NoError(t, err)

	assert.Equal(t, "text/css", res.ContentType)
	assert.Equal(t, int64(6), res.Size)
	assert.False(t, res.Listing)
	assert.Equal(t, "body{}", readAll(t, res))
}

func TestResolve_RootServesIndex(t *testing.T) {
	r, _ := fixture(t)

	res, err := r.Resolve("/")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(r.Root(), IndexFile), res.Path)
	assert.Equal(t, "text/html", res.ContentType)
	assert.Equal(t, "<p>home</p>", readAll(t, res))
}

func TestResolve_SpacesAndEscapes(t *testing.T) {
	r, _ := fixture(t)

	for _, target := range []string{"/my file.txt", "/my%20file.txt"} {
		t.Run(target, func(t *testing.T) {
			res, err := r.Resolve(target)
			require.NoError(t, err)
			assert.Equal(t, "spaces", readAll(t, res))
		})
	}
}

func TestResolve_DirectoryListing(t *testing.T) {
	r, _ := fixture(t)

	res, err := r.Resolve("/docs")
	require.NoError(t, err)
	require.True(t, res.Listing)
	assert.Equal(t, ListingContentType, res.ContentType)

	page := readAll(t, res)
	assert.Equal(t, int(res.Size), len(page))
	assert.Contains(t, page, "Index of /docs/")
	assert.Contains(t, page, `href="/docs/../"`)

	// Directories first, then case-insensitive names.
	sub := strings.Index(page, `href="/docs/sub/"`)
	a := strings.Index(page, `href="/docs/a.txt"`)
	b := strings.Index(page, `href="/docs/B.txt"`)
	require.True(t, sub >= 0 && a >= 0 && b >= 0, page)
	assert.Less(t, sub, a)
	assert.Less(t, a, b)
}

func TestResolve_Errors(t *testing.T) {
	r, _ := fixture(t)

	tests := []struct {
		name   string
		target string
		want   ErrorCode
		status int
	}{
		{"missing", "/missing.html", ErrNotFound, 404},
		{"empty", "", ErrBadRequest, 400},
		{"line ending", "/index.html\n", ErrBadRequest, 400},
		{"bad escape", "/bad%zz", ErrBadRequest, 400},
		{"too long", "/" + strings.Repeat("a", PathMax), ErrPathTooLong, 431},
		{"dot-dot outside root", "/../outside.txt", ErrForbidden, 403},
		{"symlink outside root", "/escape", ErrForbidden, 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.target)
			require.Error(t, err)
			assert.Equal(t, tt.want, codeOf(t, err))
			assert.Equal(t, tt.status, err.(*ResolveError).HTTPStatus())
		})
	}
}

func TestResolve_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses read permission checks")
	}
	r, _ := fixture(t)

	p := filepath.Join(r.Root(), "locked.txt")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o000))

	_, err := r.Resolve("/locked.txt")
	assert.Equal(t, ErrForbidden, codeOf(t, err))
}

func TestResolve_UnreadableIndexIsForbidden(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses read permission checks")
	}
	r, _ := fixture(t)

	p := filepath.Join(r.Root(), "docs", IndexFile)
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o000))

	_, err := r.Resolve("/docs/")
	assert.Equal(t, ErrForbidden, codeOf(t, err))
}

func TestNewResolver_RejectsFileRoot(t *testing.T) {
	p := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(p, nil, 0o644))

	_, err := NewResolver(p, 64)
	assert.Error(t, err)

	_, err = NewResolver(filepath.Join(t.TempDir(), "nope"), 64)
	assert.Error(t, err)
}

func TestResolve_IndexDirectoryFallsBackToListing(t *testing.T) {
	r, _ := fixture(t)

	require.NoError(t, os.MkdirAll(filepath.Join(r.Root(), "docs", IndexFile), 0o755))

	res, err := r.Resolve("/docs")
	require.NoError(t, err)
	assert.True(t, res.Listing)

	body := readAll(t, res)
	assert.Equal(t, int64(len(body)), res.Size)
	assert.Contains(t, body, IndexFile)
}

func TestResolve_DirectoryIsNeverOpenedAsFile(t *testing.T) {
	r, _ := fixture(t)

	_, err := r.openFile(filepath.Join(r.Root(), "docs"), "docs")
	assert.Equal(t, ErrForbidden, codeOf(t, err))
}

func TestResolve_URLPathIsRootRelative(t *testing.T) {
	r, _ := fixture(t)

	tests := []struct {
		target string
		want   string
	}{
		{"/", "/index.html"},
		{"/docs/", "/docs"},
		{"/docs/../style.css", "/style.css"},
		{"/./docs/a.txt", "/docs/a.txt"},
		{"/my%20file.txt", "/my file.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			res, err := r.Resolve(tt.target)
			require.NoError(t, err)
			defer res.Close()
			assert.Equal(t, tt.want, res.URLPath)
		})
	}
}
