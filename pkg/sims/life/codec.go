package life

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"lifegrid/internal/fsutil"
)

// Boards are stored as plain text: one line per row, top to bottom, each
// character '0' (dead) or '1' (alive), rows separated by '\n' with no
// terminator after the last row. There is no header and no whitespace is
// tolerated.

const (
	charDead  = '0'
	charAlive = '1'
)

// ErrFormat is wrapped by every FormatError.
var ErrFormat = errors.New("life: malformed board")

// FormatError describes why board text was rejected. Line is 1-based; it is
// zero when the problem concerns the input as a whole.
type FormatError struct {
	Line   int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%v: %s", ErrFormat, e.Reason)
	}
	return fmt.Sprintf("%v: line %d: %s", ErrFormat, e.Line, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// Save writes the grid's current cells to w.
func Save(w io.Writer, g *Grid) error {
	bw := bufio.NewWriter(w)
	for y := 0; y < g.h; y++ {
		if y > 0 {
			bw.WriteByte('\n')
		}
		for _, c := range g.cur.Row(y) {
			if c == alive {
				bw.WriteByte(charAlive)
			} else {
				bw.WriteByte(charDead)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("life: write board: %w", err)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler using the board format.
func (g *Grid) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(g.h * (g.w + 1))
	if err := Save(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load parses a board of exactly w columns and h rows from r. A single
// trailing newline after the last row is accepted. The returned grid starts
// at generation zero.
func Load(r io.Reader, w, h int) (*Grid, error) {
	g, err := New(w, h)
	if err != nil {
		return nil, err
	}
	rows := 0
	err = eachLine(r, func(n int, line []byte) error {
		if n > h {
			return &FormatError{Line: n, Reason: fmt.Sprintf("expected %d lines", h)}
		}
		if len(line) != w {
			return &FormatError{Line: n, Reason: fmt.Sprintf("length %d, expected %d", len(line), w)}
		}
		if err := decodeRow(g.cur.Row(n-1), line, n); err != nil {
			return err
		}
		rows = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rows != h {
		return nil, &FormatError{Reason: fmt.Sprintf("got %d lines, expected %d", rows, h)}
	}
	return g, nil
}

// Decode parses a board whose dimensions are taken from the text itself: the
// first line sets the width and every other line must match it.
func Decode(r io.Reader) (*Grid, error) {
	var rows [][]byte
	err := eachLine(r, func(n int, line []byte) error {
		if n > 1 && len(line) != len(rows[0]) {
			return &FormatError{Line: n, Reason: fmt.Sprintf("length %d, expected %d", len(line), len(rows[0]))}
		}
		if len(line) == 0 {
			return &FormatError{Line: n, Reason: "empty line"}
		}
		rows = append(rows, append([]byte(nil), line...))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &FormatError{Reason: "empty board"}
	}
	g, err := New(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	for y, line := range rows {
		if err := decodeRow(g.cur.Row(y), line, y+1); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func decodeRow(dst, line []byte, n int) error {
	for x, ch := range line {
		switch ch {
		case charDead:
			dst[x] = dead
		case charAlive:
			dst[x] = alive
		default:
			return &FormatError{Line: n, Reason: fmt.Sprintf("invalid character %q at column %d", ch, x+1)}
		}
	}
	return nil
}

// eachLine calls fn with every '\n'-separated line of r, numbered from 1.
// A terminator after the final line does not start another line.
func eachLine(r io.Reader, fn func(n int, line []byte) error) error {
	br := bufio.NewReader(r)
	for n := 1; ; n++ {
		line, err := br.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			// ReadSlice's buffer is reused by the next read.
			head := append([]byte(nil), line...)
			var rest []byte
			rest, err = br.ReadBytes('\n')
			line = append(head, rest...)
		}
		if err != nil && err != io.EOF {
			return fmt.Errorf("life: read board: %w", err)
		}
		if err == io.EOF && len(line) == 0 {
			return nil
		}
		line = bytes.TrimSuffix(line, []byte{'\n'})
		if ferr := fn(n, line); ferr != nil {
			return ferr
		}
		if err == io.EOF {
			return nil
		}
	}
}

// SaveFile writes g to path on fsys. The file is replaced as a whole.
func SaveFile(fsys fsutil.FileSystem, path string, g *Grid) error {
	data, err := g.MarshalText()
	if err != nil {
		return err
	}
	if err := fsys.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("life: save %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a w×h board from path on fsys.
func LoadFile(fsys fsutil.FileSystem, path string, w, h int) (*Grid, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("life: load %s: %w", path, err)
	}
	defer f.Close()
	g, err := Load(f, w, h)
	if err != nil {
		return nil, fmt.Errorf("life: load %s: %w", path, err)
	}
	return g, nil
}

// DecodeFile reads a board of any size from path on fsys.
func DecodeFile(fsys fsutil.FileSystem, path string) (*Grid, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("life: load %s: %w", path, err)
	}
	defer f.Close()
	g, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("life: load %s: %w", path, err)
	}
	return g, nil
}
