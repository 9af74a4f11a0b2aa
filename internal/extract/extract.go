// Package extract isolates the text belonging to a single release from a
// larger changelog stream. The scan is forward-only and line-oriented: lines
// are skipped until one matches the start pattern, then captured until one
// matches the end pattern or the input ends.
package extract

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// PatternNotFoundError is returned when the entire input was scanned but the
// start pattern never matched a line.
type PatternNotFoundError struct {
	Pattern string
}

func (e *PatternNotFoundError) Error() string {
	return fmt.Sprintf("no line matched pattern %q", e.Pattern)
}

// Extract scans r line by line and returns the text between the first line
// matching start and the next line matching end.
//
// The start line is included in the result; the end line is not. Reaching
// end-of-input before an end match is a valid terminator, not an error.
// If no line ever matches start, a *PatternNotFoundError is returned and no
// partial result is produced.
func Extract(r io.Reader, start, end *regexp.Regexp) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	capturing := false
	var lines []string

	for scanner.Scan() {
		line := scanner.Text()

		if !capturing {
			if !start.MatchString(line) {
				continue
			}
			capturing = true
		} else if end.MatchString(line) {
			break
		}

		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading changelog: %w", err)
	}

	if !capturing {
		return "", &PatternNotFoundError{Pattern: start.String()}
	}

	return strings.Join(lines, "\n"), nil
}
