package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChapterHappyPath(t *testing.T) {
	raw := "**Chapter 3**\nThe door creaked open.\nA cold wind followed.\n\n**Choose your path:**\nA) Step inside\nB) Run back to the village"

	body, choices := ParseChapter(raw)

	assert.Equal(t, "The door creaked open.\nA cold wind followed.", body)
	assert.Equal(t, []string{"Step inside", "Run back to the village"}, choices)
}

func TestParseChapterNoMarker(t *testing.T) {
	raw := "**Chapter 20**\nAnd so the journey ended.\nThe hero went home."

	body, choices := ParseChapter(raw)

	assert.Equal(t, "And so the journey ended.\nThe hero went home.", body)
	assert.Empty(t, choices, "missing marker means a degraded terminal chapter")
}

func TestParseChapterMarkerVariants(t *testing.T) {
	variants := []string{
		"**Choose your path:**",
		"**Choose your path**",
		"Choose your path:",
		"choose your path",
		"**CHOOSE YOUR PATH:**",
	}
	for _, marker := range variants {
		t.Run(marker, func(t *testing.T) {
			raw := "Body line.\n" + marker + "\nA) left\nB) right"
			body, choices := ParseChapter(raw)
			assert.Equal(t, "Body line.", body)
			assert.Equal(t, []string{"left", "right"}, choices)
		})
	}
}

func TestParseChapterOrderPreservedRegardlessOfLetters(t *testing.T) {
	raw := "Body.\n**Choose your path:**\nB) second letter first\nA) first letter second\nC) a third one"

	_, choices := ParseChapter(raw)

	assert.Equal(t, []string{"second letter first", "first letter second", "a third one"}, choices)
}

func TestParseChapterKeepsExtraChoices(t *testing.T) {
	raw := "Body.\n**Choose your path:**\nA) one\nB) two\nC) three\nD) four"

	_, choices := ParseChapter(raw)

	assert.Len(t, choices, 4)
}

func TestParseChapterEmptyChoiceRetained(t *testing.T) {
	raw := "Body.\n**Choose your path:**\nA)\nB) something"

	_, choices := ParseChapter(raw)

	assert.Equal(t, []string{"", "something"}, choices, "empty choice keeps positional alignment")
}

func TestParseChapterIgnoresProseInChoicesSection(t *testing.T) {
	raw := "Body.\n**Choose your path:**\nWhat will you do?\nA) one\nremember to choose wisely\nB) two"

	body, choices := ParseChapter(raw)

	assert.Equal(t, "Body.", body)
	assert.Equal(t, []string{"one", "two"}, choices)
}

func TestParseChapterTrimsWhitespace(t *testing.T) {
	raw := "  Body line.  \n\n**Choose your path:**\nA)   spaced out   \nB)\tother"

	body, choices := ParseChapter(raw)

	assert.Equal(t, "Body line.", body)
	assert.Equal(t, []string{"spaced out", "other"}, choices)
}

func TestParseChapterSkipsChapterHeaders(t *testing.T) {
	raw := "**Chapter 7**\nOnly this line matters.\n**Choose your path:**\nA) x\nB) y"

	body, _ := ParseChapter(raw)

	assert.Equal(t, "Only this line matters.", body)
}
