package plaintext

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// ErrBadHeader is wrapped when a "#" line is not a valid block header.
var ErrBadHeader = errors.New("malformed block header")

var (
	// blockHeaderRe matches: # Upper body 2026-03-04  or  # Upper body <2026-03-04>
	blockHeaderRe = regexp.MustCompile(`^#\s+(.+?)\s+<?(\d{4}-\d{2}-\d{2})>?$`)
)

// Block is one dated workout inside a notes document.
type Block struct {
	Name string
	Date time.Time
	Text string
	Line int // 1-based line of the block header
}

// Split reads a notes document and returns its workout blocks in order.
// A block starts at a "# <name> <YYYY-MM-DD>" line and runs until the next
// one. Text before the first block header is ignored.
func Split(r io.Reader) ([]Block, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var blocks []Block
	var current *Block
	var body []string
	lineNo := 0

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(strings.Join(body, "\n"))
		blocks = append(blocks, *current)
		current = nil
		body = nil
	}

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "# ") || line == "#" {
			m := blockHeaderRe.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("line %d: %w: %q has no YYYY-MM-DD date", lineNo, ErrBadHeader, line)
			}
			date, err := time.Parse("2006-01-02", m[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: date %q: %v", lineNo, ErrBadHeader, m[2], err)
			}
			flush()
			current = &Block{Name: m[1], Date: date, Line: lineNo}
			continue
		}

		if current != nil {
			body = append(body, raw)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading notes: %w", err)
	}
	flush()
	return blocks, nil
}
