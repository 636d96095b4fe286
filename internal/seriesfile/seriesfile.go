package seriesfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/rickgao/traffic-data/internal/model"
)

// Column names and file extension.
const (
	TimestampColumn = "date and time"
	ValueColumn     = "value"
	Extension       = ".csv"
)

var (
	// ErrInvalidFormat means the file cannot be used: missing header column
	// or unparseable timestamp.
	ErrInvalidFormat = errors.New("invalid series file format")

	// ErrDirNotFound means the input directory does not exist.
	ErrDirNotFound = errors.New("input directory not found")

	// ErrNoInputFiles means the input directory holds no series files.
	ErrNoInputFiles = errors.New("no input files")
)

// ParseError reports the row and raw text that could not be parsed.
type ParseError struct {
	Path string
	Row  int // 1-based line number, header is line 1
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s row %d: cannot parse %q: %v", e.Path, e.Row, e.Raw, e.Err)
}

// Unwrap lets errors.Is match ErrInvalidFormat.
func (e *ParseError) Unwrap() error {
	return ErrInvalidFormat
}

// Path returns the series file path for a region in dir.
func Path(dir, region string) string {
	return filepath.Join(dir, region+Extension)
}

// RegionFromPath returns the file's base name without extension.
func RegionFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), Extension)
}

// Write saves points for region into dir in the given order and returns the path.
// An empty series produces a header-only file.
func Write(region string, points []model.DataPoint, dir string) (string, error) {
	path := Path(dir, region)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "create %s", path)
	}

	if err := encode(f, points); err != nil {
		f.Close()
		return "", errors.Wrapf(err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "close %s", path)
	}

	return path, nil
}

func encode(w io.Writer, points []model.DataPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{TimestampColumn, ValueColumn}); err != nil {
		return err
	}
	for _, p := range points {
		if err := cw.Write([]string{model.FormatTimestamp(p.Time()), p.Value.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row is one data line of a series file. Value is the cell text as written,
// trimmed of surrounding space; it may be empty or non-numeric.
type Row struct {
	TimestampMS int64
	Value       string
}

// Read loads a series file. The first row must be a header containing
// "date and time". Rows that are empty or have fewer than two columns are
// ignored. Value cells are not interpreted. An unparseable timestamp aborts
// the read with a *ParseError.
func Read(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	return decode(path, f)
}

func decode(path string, r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Wrapf(ErrInvalidFormat, "%s: empty file", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read header %s", path)
	}

	tsCol, valCol, ok := columns(header)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidFormat, "%s: header %v lacks %q", path, header, TimestampColumn)
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		row, _ := cr.FieldPos(0)

		if len(record) < 2 || blank(record) || len(record) <= tsCol || len(record) <= valCol {
			continue
		}

		ts, err := model.ParseTimestamp(record[tsCol])
		if err != nil {
			return nil, &ParseError{Path: path, Row: row, Raw: record[tsCol], Err: err}
		}

		rows = append(rows, Row{TimestampMS: ts.UnixMilli(), Value: strings.TrimSpace(record[valCol])})
	}

	return rows, nil
}

// columns locates the timestamp and value columns in a header row.
func columns(header []string) (tsCol, valCol int, ok bool) {
	tsCol, valCol = -1, -1
	for i, name := range header {
		switch strings.TrimPrefix(name, "\ufeff") {
		case TimestampColumn:
			if tsCol < 0 {
				tsCol = i
			}
		case ValueColumn:
			if valCol < 0 {
				valCol = i
			}
		}
	}
	if tsCol < 0 {
		return 0, 0, false
	}
	if valCol < 0 {
		// Legacy files: value follows the timestamp.
		valCol = 1
		if tsCol == 1 {
			valCol = 0
		}
	}
	return tsCol, valCol, true
}

func blank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// List returns the series files in dir, sorted by name.
func List(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.Wrapf(ErrDirNotFound, "%s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read dir %s", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, errors.Wrapf(ErrNoInputFiles, "%s", dir)
	}

	sort.Strings(paths)
	return paths, nil
}
