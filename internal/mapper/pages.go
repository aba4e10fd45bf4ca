package mapper

import (
	"regexp"
	"strconv"
	"strings"
)

// pageMarkerRe matches page boundary lines embedded in extracted document
// text, e.g. "--- Page 12 ---" or "Page 3".
var pageMarkerRe = regexp.MustCompile(`^\s*[-=*\s]*Page\s+(\d+)\s*[-=*\s]*$`)

// page is one page of document text.
type page struct {
	number int
	text   string
}

// splitPages splits raw document text on page markers. Text before the first
// marker, or a document with no markers at all, is treated as page 1.
func splitPages(text string) []page {
	lines := strings.Split(text, "\n")

	var pages []page
	current := page{number: 1}
	var buf []string

	flush := func() {
		body := strings.TrimSpace(strings.Join(buf, "\n"))
		if body != "" {
			current.text = body
			pages = append(pages, current)
		}
		buf = buf[:0]
	}

	for _, line := range lines {
		if m := pageMarkerRe.FindStringSubmatch(line); m != nil {
			flush()
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 {
				n = current.number + 1
			}
			current = page{number: n}
			continue
		}
		buf = append(buf, line)
	}
	flush()

	return pages
}

// PageCount returns the number of non-empty pages in the document text.
func PageCount(text string) int {
	return len(splitPages(text))
}
