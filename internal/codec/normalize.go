package codec

import "strings"

// Normalize splits text into trimmed lines and collapses each run of blank
// lines into a single blank line.
func Normalize(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	blank := false
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		lines = append(lines, line)
	}
	return lines
}
