package airfoil

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// BuiltinPrefix marks a table path that resolves to an embedded table.
const BuiltinPrefix = "builtin:"

//go:embed data/*
var builtin embed.FS

// RowError reports a malformed row in a table source.
type RowError struct {
	Source string
	Line   int
	Fields int
	Want   int
	Err    error
}

func (e *RowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("airfoil: %s:%d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("airfoil: %s:%d: expected %d fields, got %d", e.Source, e.Line, e.Want, e.Fields)
}

func (e *RowError) Unwrap() error { return ErrMalformedRow }

// readColumns reads whitespace separated rows of exactly n numbers. Lines
// starting with '#' and blank lines are skipped.
func readColumns(r io.Reader, source string, n int) ([][]float64, error) {
	cols := make([][]float64, n)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != n {
			return nil, &RowError{Source: source, Line: line, Fields: len(fields), Want: n}
		}
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, &RowError{Source: source, Line: line, Fields: len(fields), Want: n, Err: err}
			}
			cols[i] = append(cols[i], v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("airfoil: read %s: %w", source, err)
	}
	return cols, nil
}

// ReadTable parses "alpha Cl Cd" rows.
func ReadTable(r io.Reader, source string) (Table, error) {
	cols, err := readColumns(r, source, 3)
	if err != nil {
		return Table{}, err
	}
	return Table{Alpha: cols[0], Cl: cols[1], Cd: cols[2]}, nil
}

// ReadPolar parses "alpha value" rows.
func ReadPolar(r io.Reader, source string) (Polar, error) {
	cols, err := readColumns(r, source, 2)
	if err != nil {
		return Polar{}, err
	}
	return Polar{Alpha: cols[0], Values: cols[1]}, nil
}

// Open resolves a table path, serving the builtin prefix from the embedded
// data directory.
func Open(path string) (io.ReadCloser, error) {
	if name, ok := strings.CutPrefix(path, BuiltinPrefix); ok {
		f, err := builtin.Open("data/" + name)
		if err != nil {
			return nil, fmt.Errorf("airfoil: unable to open table %s: %w", path, err)
		}
		return f, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("airfoil: unable to open table %s: %w", path, err)
	}
	return f, nil
}

// Builtin lists the embedded table names.
func Builtin() []string {
	entries, err := fs.ReadDir(builtin, "data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, BuiltinPrefix+e.Name())
	}
	return names
}

func loadTable(path string) (Table, error) {
	f, err := Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()
	return ReadTable(f, path)
}

func loadPolar(path string) (Polar, error) {
	f, err := Open(path)
	if err != nil {
		return Polar{}, err
	}
	defer f.Close()
	return ReadPolar(f, path)
}

// Load reads one or more full tables and averages them.
func Load(name string, paths ...string) (*Airfoil, error) {
	if len(paths) == 0 {
		return nil, ErrNoTables
	}
	tables := make([]Table, 0, len(paths))
	for _, p := range paths {
		t, err := loadTable(p)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return New(name, tables...)
}

// LoadPolars reads separate Cl and Cd tables and reconciles their grids.
func LoadPolars(name, clPath, cdPath string) (*Airfoil, error) {
	cl, err := loadPolar(clPath)
	if err != nil {
		return nil, err
	}
	cd, err := loadPolar(cdPath)
	if err != nil {
		return nil, err
	}
	return FromPolars(name, cl, cd)
}
