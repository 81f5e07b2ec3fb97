package resource

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortEntries(t *testing.T) {
	entries := []DirEntry{
		{Name: "b.txt"},
		{Name: "Zeta", IsDir: true},
		{Name: "a.txt"},
		{Name: "A", IsDir: true},
		{Name: "B.txt"},
	}

	SortEntries(entries)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"A", "Zeta", "a.txt", "B.txt", "b.txt"}, names)
}

func TestReadEntries_ParentOnlyOutsideRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))

	entries, err := ReadEntries(dir, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Name)
	assert.Equal(t, int64(1), entries[0].Size)

	entries, err = ReadEntries(dir, true)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "..", entries[0].Name)
	assert.True(t, entries[0].IsDir)
}

func TestReadEntries_DanglingSymlink(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "link")))

	entries, err := ReadEntries(dir, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "link", entries[0].Name)
	assert.Zero(t, entries[0].Size)
	assert.Equal(t, time.Unix(0, 0), entries[0].ModTime)
}

func TestRenderListing(t *testing.T) {
	mtime := time.Date(2024, 11, 14, 23, 5, 0, 0, time.UTC)
	entries := []DirEntry{
		{Name: "sub", IsDir: true, Size: 4096, ModTime: mtime},
		{Name: "a.txt", Size: 12, ModTime: mtime},
		{Name: "empty", ModTime: mtime},
		{Name: "<b>&.txt", Size: 1, ModTime: mtime},
	}

	page := string(RenderListing("", entries, 16))

	assert.Contains(t, page, "<h1>Index of /</h1>")
	assert.Contains(t, page, `<a href="/sub/">sub/</a>`)
	assert.Contains(t, page, `<a href="/a.txt">a.txt</a>`)
	assert.Contains(t, page, "<td>14-Nov-2024 23:05</td>")
	assert.Contains(t, page, `<td style="text-align: right">12</td>`)
	assert.Contains(t, page, "&lt;b&gt;&amp;.txt</a>")
	assert.Contains(t, page, `href="/%3Cb%3E&amp;.txt"`)
	assert.Equal(t, 2, strings.Count(page, `<td style="text-align: right">-</td>`))
	assert.True(t, strings.HasSuffix(page, "</html>\n"))
}

func TestRenderListing_NestedLogicalPath(t *testing.T) {
	page := string(RenderListing("docs/my dir/", []DirEntry{{Name: "x y"}}, 16))

	assert.Contains(t, page, "Index of /docs/my dir/")
	assert.Contains(t, page, `href="/docs/my%20dir/x%20y"`)
}

func TestBuffer_DoublesAndShrinks(t *testing.T) {
	b := NewBuffer(4)
	_, _ = b.WriteString("abc")
	assert.Equal(t, 4, b.Cap())

	_, _ = b.WriteString("defgh")
	assert.Equal(t, 8, b.Cap())

	_, _ = b.Write([]byte("ijklmnopq"))
	assert.Equal(t, 32, b.Cap())
	assert.Equal(t, "abcdefghijklmnopq", string(b.Bytes()))

	b.ShrinkToFit()
	assert.Equal(t, b.Len(), b.Cap())
	assert.Equal(t, "abcdefghijklmnopq", string(b.Bytes()))
}
