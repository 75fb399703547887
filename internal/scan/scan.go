// Package scan discovers candidate statement files, routes them to a source
// kind and collapses repeat-downloaded duplicates before any parsing starts.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tally/internal/core"
)

// FileMeta describes one candidate file. Name and Folder are kept separate
// because period attribution treats them as distinct signals.
type FileMeta struct {
	Path    string
	Name    string
	Folder  string
	Kind    core.SourceKind
	ModTime time.Time
}

// Walk collects spreadsheet files under root for one source kind, skipping
// Office lock files. Platform roots may additionally refine the kind per
// file via Classify.
func Walk(root string, kind core.SourceKind) ([]FileMeta, error) {
	var files []FileMeta
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, "~$") {
			return nil
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".xlsx", ".xls", ".csv":
		default:
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileMeta{
			Path:    path,
			Name:    name,
			Folder:  filepath.Base(filepath.Dir(path)),
			Kind:    kind,
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Classify maps a platform export's file name to its source kind. Warehouse
// files are routed by their configured root instead; their names carry no
// reliable platform marker.
func Classify(name string) (core.SourceKind, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".csv") && strings.Contains(lower, "transaction"):
		return core.SourceMarketplace, true
	case strings.HasSuffix(lower, ".xlsx") && isFundDetail(lower):
		return core.SourceFundDetail, true
	case strings.HasSuffix(lower, ".xlsx") && (strings.Contains(name, "已完成账单") || strings.Contains(name, "账单商品维度")):
		return core.SourceStatement, true
	case strings.HasSuffix(lower, ".xlsx") && strings.Contains(name, "收支明细"):
		return core.SourceManaged, true
	case strings.HasSuffix(lower, ".xlsx") && strings.Contains(name, "收支流水"):
		return core.SourceFlow, true
	}
	return "", false
}

// isFundDetail recognizes the fund-detail export names. Plain "detail" needs
// a qualifying separator so other platforms' Detail exports do not match.
func isFundDetail(lower string) bool {
	if strings.Contains(lower, "funddetail") {
		return true
	}
	for _, marker := range []string{" detail-", " detail."} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
