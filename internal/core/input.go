package core

// input.go prepares an uploaded body for tokenization:
//
//   - the UTF-8 byte order mark written by Excel on Windows is dropped
//   - bodies larger than the configured limit fail with ErrFileTooLarge
//
// Invalid UTF-8 is repaired per line by the tokenizer.

import (
	"bufio"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SkipBOM returns a reader positioned after a leading UTF-8 BOM, if any.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// limitReader fails with ErrFileTooLarge once more than max bytes are read.
type limitReader struct {
	r    io.Reader
	left int64
}

// LimitUpload caps r at max bytes. A non-positive max disables the limit.
func LimitUpload(r io.Reader, max int64) io.Reader {
	if max <= 0 {
		return r
	}
	return &limitReader{r: r, left: max}
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.left < 0 {
		return 0, ErrFileTooLarge
	}
	// Read one byte past the limit so an exact-size file still succeeds.
	if int64(len(p)) > l.left+1 {
		p = p[:l.left+1]
	}
	n, err := l.r.Read(p)
	l.left -= int64(n)
	if l.left < 0 {
		return n, ErrFileTooLarge
	}
	return n, err
}

// PrepareUpload applies the size limit and BOM skipping to an upload body.
func PrepareUpload(r io.Reader, maxBytes int64) io.Reader {
	return SkipBOM(LimitUpload(r, maxBytes))
}

// CheckFileName rejects anything that is not a .csv file.
func CheckFileName(name string) error {
	if !strings.EqualFold(filepath.Ext(strings.TrimSpace(name)), ".csv") {
		return ErrNotCSV
	}
	return nil
}
