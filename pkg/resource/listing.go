package resource

import (
	"fmt"
	"html"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ListingTimeLayout renders entry modification times (UTC).
const ListingTimeLayout = "02-Jan-2006 15:04"

const parentName = ".."

// DirEntry is one row of a directory listing.
type DirEntry struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// ReadEntries lists dir, following symlinks when stat-ing entries. The
// parent entry ".." is included when includeParent is set.
//
// An entry whose target cannot be stat-ed (a dangling symlink, say) is
// still listed, with a zero size and the Unix epoch as its time.
func ReadEntries(dir string, includeParent bool) ([]DirEntry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(des)+1)
	if includeParent {
		names = append(names, parentName)
	}
	for _, de := range des {
		names = append(names, de.Name())
	}

	entries := make([]DirEntry, 0, len(names))
	for _, name := range names {
		e := DirEntry{Name: name, ModTime: time.Unix(0, 0)}
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil {
			e.IsDir = info.IsDir()
			e.Size = info.Size()
			e.ModTime = info.ModTime()
		}
		entries = append(entries, e)
	}

	SortEntries(entries)
	return entries, nil
}

// SortEntries orders directories before files, then names
// case-insensitively, with the raw name as tie-breaker.
func SortEntries(entries []DirEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if la != lb {
			return la < lb
		}
		return a.Name < b.Name
	})
}

const listingHead = "<!DOCTYPE html>\n<html>\n<head>\n" +
	"<style>\ntd {\npadding-right: 30px;\ntext-align: left;\n}\n</style>\n" +
	"</head>\n<body>\n"

const listingFoot = "</table>\n</body>\n</html>\n"

// RenderListing renders entries of the directory at logical (the request
// path without leading slash, "" for the root) as an HTML page. Rendering
// starts in a buffer of initial bytes that doubles as needed and is shrunk
// to fit before returning.
func RenderListing(logical string, entries []DirEntry, initial int) []byte {
	logical = strings.Trim(logical, "/")

	base := "/"
	if logical != "" {
		base = "/" + logical + "/"
	}

	b := NewBuffer(initial)
	b.WriteString(listingHead)
	fmt.Fprintf(b, "<h1>Index of %s</h1>\n<table>\n", html.EscapeString(base))

	for _, e := range entries {
		suffix := ""
		if e.IsDir {
			suffix = "/"
		}

		size := "-"
		if !e.IsDir && e.Size > 0 {
			size = fmt.Sprintf("%d", e.Size)
		}

		fmt.Fprintf(b, "<tr>\n<td><a href=\"%s%s%s\">%s%s</a></td>\n<td>%s</td>\n<td style=\"text-align: right\">%s</td>\n</tr>\n",
			escapePath(base), html.EscapeString(url.PathEscape(e.Name)), suffix,
			html.EscapeString(e.Name), suffix,
			e.ModTime.UTC().Format(ListingTimeLayout),
			size,
		)
	}

	b.WriteString(listingFoot)
	b.ShrinkToFit()
	return b.Bytes()
}

// escapePath percent-encodes each segment of p, keeping the separators.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return html.EscapeString(strings.Join(segs, "/"))
}
