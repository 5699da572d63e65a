package razor

import "regexp"

var (
	excludedLine = regexp.MustCompile(`^@(?:model|page|addTagHelper|using)\b`)
	lineBreak    = regexp.MustCompile(`\r\n|\n|\r`)
)

// excludedLines returns the zero-based indices of directive lines. Text on
// these lines never becomes part of a run.
func excludedLines(source string) map[int]bool {
	excluded := make(map[int]bool)
	for i, line := range lineBreak.Split(source, -1) {
		if excludedLine.MatchString(line) {
			excluded[i] = true
		}
	}
	return excluded
}
