package scan

import (
	"regexp"
	"sort"
	"strings"
)

// duplicateSuffix matches the "(n)" a browser appends when the same export
// is downloaded again, with or without a separating space. Only single-digit
// counters collapse; larger numbers in parentheses are legitimate parts of
// warehouse file names.
var duplicateSuffix = regexp.MustCompile(`^(.*?)\s*\(([1-9])\)$`)

// canonicalName strips a single-digit duplicate suffix from the stem,
// leaving the extension intact.
func canonicalName(name string) string {
	ext := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = name[i:]
		name = name[:i]
	}
	if m := duplicateSuffix.FindStringSubmatch(name); m != nil {
		name = m[1]
	}
	return name + ext
}

// Dedupe collapses files that share a canonical name within the same folder,
// keeping the newest by modification time. Names compare case-insensitively;
// portals are not consistent about download-name casing. Ties go to the
// lexicographically smallest path so a run is reproducible on identical
// inputs. The result is sorted by path.
func Dedupe(files []FileMeta) []FileMeta {
	type key struct {
		folder string
		name   string
	}
	best := make(map[key]FileMeta)
	for _, f := range files {
		k := key{folder: f.Folder, name: strings.ToLower(canonicalName(f.Name))}
		cur, seen := best[k]
		switch {
		case !seen:
			best[k] = f
		case f.ModTime.After(cur.ModTime):
			best[k] = f
		case f.ModTime.Equal(cur.ModTime) && f.Path < cur.Path:
			best[k] = f
		}
	}
	out := make([]FileMeta, 0, len(best))
	for _, f := range best {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
