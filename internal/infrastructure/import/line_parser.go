package csvimport

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// MaxInputSize caps pasted import text
const MaxInputSize = 2 << 20

// LineParser splits delimited text into fields line by line.
// Unlike encoding/csv it reports every physical line, so field-count
// mistakes are surfaced instead of being merged by quote handling.
type LineParser struct {
	scanner    *bufio.Scanner
	currentRow int
}

// NewLineParser creates a tab-delimited parser over r that trims every field.
// It strips a UTF-8 BOM and rejects empty, oversized or non-UTF-8 input.
func NewLineParser(r io.Reader) (*LineParser, error) {
	parser := &LineParser{}

	content, err := io.ReadAll(io.LimitReader(r, MaxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read import text: %w", err)
	}
	if len(content) > MaxInputSize {
		return nil, ErrFileTooLarge
	}

	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidEncoding
	}

	parser.scanner = bufio.NewScanner(strings.NewReader(string(content)))
	parser.scanner.Buffer(make([]byte, 0, 64*1024), MaxInputSize)
	return parser, nil
}

// Row is one non-blank line with its 1-based line number
type Row struct {
	LineNumber int
	Raw        string
	Fields     []string
}

// ReadRow returns the next non-blank line, or io.EOF
func (p *LineParser) ReadRow() (*Row, error) {
	for p.scanner.Scan() {
		p.currentRow++
		raw := strings.TrimRight(p.scanner.Text(), "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}

		fields := strings.Split(raw, "\t")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		return &Row{LineNumber: p.currentRow, Raw: raw, Fields: fields}, nil
	}
	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan line %d: %w", p.currentRow+1, err)
	}
	return nil, io.EOF
}

// ReadAllRows reads every remaining non-blank line
func (p *LineParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}
