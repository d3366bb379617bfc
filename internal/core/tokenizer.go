package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultDelimiter separates fields when none is configured.
const DefaultDelimiter = ','

// maxLineBytes bounds a single physical line.
const maxLineBytes = 1 << 20

// Tokenize splits raw delimited text into rows of trimmed cells.
//
// Rows end at newlines ("\n" or "\r\n"); blank lines are discarded but
// still advance the line counter, so RawRow.Line always matches the
// physical line in the file. Within a line a double quote toggles quoted
// mode, and "" inside quotes yields one literal quote. The delimiter only
// separates fields outside quotes.
func Tokenize(r io.Reader, delim rune) ([]RawRow, error) {
	if delim == 0 {
		delim = DefaultDelimiter
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var rows []RawRow
	line := 0
	for sc.Scan() {
		line++
		text := strings.ToValidUTF8(strings.TrimSuffix(sc.Text(), "\r"), "\uFFFD")
		if strings.TrimSpace(text) == "" {
			continue
		}
		rows = append(rows, RawRow{Line: line, Cells: SplitLine(text, delim)})
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, structural("FILE002", "invalid csv: line %d exceeds %d bytes", line+1, maxLineBytes)
		}
		var se *StructuralError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return rows, nil
}

// SplitLine splits a single line into trimmed cells.
func SplitLine(line string, delim rune) []string {
	var (
		cells    []string
		cur      strings.Builder
		inQuotes bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				cur.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == delim && !inQuotes:
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(ch)
		}
	}
	return append(cells, strings.TrimSpace(cur.String()))
}

// splitHeader separates the header row from the data rows.
func splitHeader(rows []RawRow) (RawRow, []RawRow, error) {
	if len(rows) < 2 {
		return RawRow{}, nil, ErrNoDataRows
	}
	return rows[0], rows[1:], nil
}
