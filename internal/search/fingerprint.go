package search

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// Fingerprint hashes the identity-relevant fields of a search request — root
// path, pattern, search type, output mode, and literal-search flag — into a single uint64 via
// xxh3, the same fast-structural-hash idiom the teacher uses for
// pipeline.FileDescriptor.ContentHash. Two sessions with the same
// fingerprint are very likely the same logical search issued twice; this is
// purely an observability aid (duplicate-search detection in registry
// logging), not an identity or dedup key — it changes no
// result semantics.
func Fingerprint(opts SearchOptions) uint64 {
	root := filepath.Clean(opts.RootPath)

	var b strings.Builder
	b.WriteString(root)
	b.WriteByte('\x00')
	b.WriteString(opts.Pattern)
	b.WriteByte('\x00')
	b.WriteString(string(opts.SearchType))
	b.WriteByte('\x00')
	b.WriteString(string(opts.OutputMode))
	b.WriteByte('\x00')
	b.WriteString(strconv.FormatBool(opts.LiteralSearch != nil && *opts.LiteralSearch))

	return xxh3.HashString(b.String())
}
