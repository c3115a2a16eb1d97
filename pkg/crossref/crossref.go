// Package crossref derives cross-course edges from spreadsheet exports.
//
// Each sheet describes one module of the source course. Its file name carries
// the module number ("Physics Module 3_connections.csv") and its header names
// a label column and a connections column. A row labelled "B" whose
// connections cell reads "4A, 12 c" links source concept "6A:3B" to target
// concepts "6C:4A" and "6C:12C".
//
// Anything that does not fit is skipped without failing the run: files whose
// names carry no module number, sheets missing either column, rows with
// malformed labels and identifiers absent from the combined graph.
package crossref

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/conceptmap/conceptmerge/pkg/edges"
	"github.com/conceptmap/conceptmerge/pkg/errors"
	"github.com/conceptmap/conceptmerge/pkg/graph"
	"github.com/conceptmap/conceptmerge/pkg/ident"
	"github.com/conceptmap/conceptmerge/pkg/tabular"
)

// Defaults for the two-course 6A/6C merge.
const (
	DefaultSourceCourse      = "6A"
	DefaultTargetCourse      = "6C"
	DefaultLabelColumn       = "label"
	DefaultConnectionsColumn = "6c connections"
	TagCrossCourse           = "cross-course"
)

// DefaultTags are attached to every edge derived from a sheet.
var DefaultTags = []string{TagCrossCourse, "6A-6C"}

var moduleFilePattern = regexp.MustCompile(`(?i)Module\s+(\d+)_`)

// Linker turns cross-reference sheets into edges between two courses.
type Linker struct {
	SourceCourse      string      `json:"source_course"`
	TargetCourse      string      `json:"target_course"`
	LabelColumn       string      `json:"label_column"`
	ConnectionsColumn string      `json:"connections_column"`
	Tags              []string    `json:"tags"`
	Logger            *log.Logger `json:"-"`
}

// Default returns the linker for the 6A to 6C sheets.
func Default() *Linker {
	return &Linker{
		SourceCourse:      DefaultSourceCourse,
		TargetCourse:      DefaultTargetCourse,
		LabelColumn:       DefaultLabelColumn,
		ConnectionsColumn: DefaultConnectionsColumn,
		Tags:              slices.Clone(DefaultTags),
	}
}

// Stats counts what a linking pass consumed and skipped.
type Stats struct {
	Files        int // sheets parsed
	SkippedFiles int // sheets ignored by name or header
	Rows         int // data rows examined
	SkippedRows  int // rows contributing no edge
	Edges        int // Add calls accepted (before dedup)
}

func (s *Stats) merge(o Stats) {
	s.Files += o.Files
	s.SkippedFiles += o.SkippedFiles
	s.Rows += o.Rows
	s.SkippedRows += o.SkippedRows
	s.Edges += o.Edges
}

// ModuleFromFilename extracts the module number from a sheet name such as
// "6A Module 12_links.csv".
func ModuleFromFilename(name string) (int, bool) {
	m := moduleFilePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// LinkDir processes every .csv file in dir, in name order, adding edges to
// set for each connection whose endpoints are both in known.
//
// A missing or unreadable directory is an error; problems inside individual
// sheets are skipped and counted in the returned Stats.
func (l *Linker) LinkDir(dir string, known map[string]bool, set *edges.Set) (Stats, error) {
	var stats Stats

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, errors.Wrap(errors.ErrCodeFileNotFound, err, "cross-reference directory %s", dir)
		}
		return stats, fmt.Errorf("read cross-reference directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		module, ok := ModuleFromFilename(name)
		if !ok {
			l.logger().Debug("skipping sheet without module number", "file", name)
			stats.SkippedFiles++
			continue
		}
		fs, err := l.LinkFile(filepath.Join(dir, name), module, known, set)
		if err != nil {
			return stats, err
		}
		stats.merge(fs)
	}
	return stats, nil
}

// LinkFile processes one sheet belonging to module.
func (l *Linker) LinkFile(path string, module int, known map[string]bool, set *edges.Set) (Stats, error) {
	rows, err := tabular.ParseFile(path)
	if err != nil {
		return Stats{}, err
	}
	return l.LinkRows(filepath.Base(path), rows, module, known, set), nil
}

// headerScanRows bounds how far down a sheet the column names are searched.
const headerScanRows = 4

// findColumns returns the index of each named column, searching the first
// headerScanRows rows. Each name takes its first match independently.
func findColumns(rows [][]string, label, conn string) (int, int) {
	labelCol, connCol := -1, -1
	for _, r := range rows[:min(len(rows), headerScanRows)] {
		if labelCol < 0 {
			labelCol = tabular.Column(r, label)
		}
		if connCol < 0 {
			connCol = tabular.Column(r, conn)
		}
	}
	return labelCol, connCol
}

// LinkRows processes already parsed rows. Column names may appear in any of
// the first few rows; every row after the first is read as data, so header
// rows below it fail label validation and are skipped.
func (l *Linker) LinkRows(name string, rows [][]string, module int, known map[string]bool, set *edges.Set) Stats {
	var stats Stats
	logger := l.logger().With("file", name)

	if len(rows) == 0 {
		logger.Debug("skipping empty sheet")
		stats.SkippedFiles++
		return stats
	}
	labelCol, connCol := findColumns(rows, l.LabelColumn, l.ConnectionsColumn)
	if labelCol < 0 || connCol < 0 {
		logger.Debug("skipping sheet without required columns",
			"label", l.LabelColumn, "connections", l.ConnectionsColumn)
		stats.SkippedFiles++
		return stats
	}
	stats.Files++

	for i, row := range rows[1:] {
		stats.Rows++
		added := l.linkRow(logger.With("row", i+2), row, labelCol, connCol, module, known, set)
		if added == 0 {
			stats.SkippedRows++
		}
		stats.Edges += added
	}
	return stats
}

func (l *Linker) linkRow(logger *log.Logger, row []string, labelCol, connCol, module int, known map[string]bool, set *edges.Set) int {
	label := strings.ToUpper(strings.TrimSpace(tabular.Cell(row, labelCol)))
	if !ident.IsLabel(label) {
		logger.Debug("skipping row with invalid label", "label", label)
		return 0
	}

	src := graph.NodeID(l.SourceCourse, strconv.Itoa(module)+label)
	if !known[src] {
		logger.Debug("skipping unknown source concept", "source", src)
		return 0
	}

	added := 0
	for _, base := range ident.Normalize(tabular.Cell(row, connCol)) {
		dst := graph.NodeID(l.TargetCourse, base)
		if !known[dst] {
			logger.Debug("skipping unknown target concept", "source", src, "target", dst)
			continue
		}
		if set.Add(src, dst, l.Tags...) {
			added++
		}
	}
	return added
}

func (l *Linker) logger() *log.Logger {
	if l.Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return l.Logger
}
