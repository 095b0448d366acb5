package story

import (
	"regexp"
	"strings"
)

var optionMarker = regexp.MustCompile(`^[A-Za-z]\)`)

// ParseChapter splits raw model output into the chapter body and its ordered
// choice list. The model is asked for a "**Choose your path:**" marker
// followed by lettered options, but that is a request, not a guarantee, so
// the scan is tolerant:
//
//   - no marker at all: the whole text (minus chapter headers) becomes the
//     body and the choice list is empty, a degraded terminal chapter
//   - more than two options: all are kept in order
//   - an option with no text after the marker: kept as an empty string so
//     positions still line up with recorded choice indexes
//
// The function is pure; it touches no network or storage.
func ParseChapter(raw string) (string, []string) {
	var body []string
	var choices []string

	inChoices := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if isChoiceSectionMarker(line) {
			inChoices = true
			continue
		}
		if inChoices {
			if optionMarker.MatchString(line) {
				choices = append(choices, strings.TrimSpace(line[2:]))
			}
			// anything else in the choices section is ignored
			continue
		}
		if line != "" && !strings.HasPrefix(line, "**Chapter") {
			body = append(body, line)
		}
	}

	return strings.TrimSpace(strings.Join(body, "\n")), choices
}

// isChoiceSectionMarker accepts the "Choose your path" line in the formats
// models actually emit: with or without bold markers, with or without a
// trailing colon, any letter case.
func isChoiceSectionMarker(line string) bool {
	s := strings.Trim(line, "*")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ":")
	return strings.EqualFold(s, "Choose your path")
}
