package story

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/weave-app/weave-server/models"
)

// FinalChapter is the chapter number the model is told to conclude by. The
// orchestrator never requests a chapter past it.
const FinalChapter = 20

// PromptBuilder assembles generation requests for the first chapter and for
// continuations. Every prompt embeds a uniqueness token derived from the
// clock and a random creativity scalar, so identical histories still produce
// different model outputs. The token is advisory prose, nothing more.
type PromptBuilder struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

// FirstChapterPrompt builds the request for chapter 1. A non-empty seed
// concept is included as non-binding inspiration with explicit freedom to
// reinterpret it.
func (b *PromptBuilder) FirstChapterPrompt(genre, author, seedConcept string) string {
	conceptSection := ""
	if strings.TrimSpace(seedConcept) != "" {
		conceptSection = fmt.Sprintf(`

STORY CONCEPT INSPIRATION (use as creative springboard):
%q

CREATIVE FREEDOM INSTRUCTIONS:
- Use this concept as a launching point, not a rigid constraint
- Feel free to expand, modify, or reinterpret the concept creatively
- Your primary goal is to write an authentic %[2]s-style story
- Enhance the concept with your own creative elements
- The story should feel natural and well-crafted above all else
- You have complete artistic license to improve upon this foundation`, seedConcept, author)
	}

	return fmt.Sprintf(`Write a creative and engaging first chapter of an interactive story in the %[1]s genre, written in the distinctive style of %[2]s.

AUTHOR STYLE PRIORITIES:
- Study and embody %[2]s's narrative voice and tone
- Capture their character development approach
- Mirror their descriptive style and pacing
- Replicate their dialogue patterns
- Incorporate their world-building techniques (if applicable)%[3]s

UNIQUENESS ELEMENT:
- %[4]s

QUALITY GUIDELINES:
- Story quality and authentic %[2]s style are your top priorities
- Create an engaging, professionally crafted opening
- Let the story flow naturally in %[2]s's voice
- Focus on compelling characters and intriguing situations
- Make each generation unique and fresh

The chapter should be approximately 300-500 words and end with two interesting decisions for the reader to choose from.

Format your response as:

**Chapter 1**
[Your story content here in %[2]s's authentic style]

**Choose your path:**
A) [First decision option]
B) [Second decision option]`, genre, author, conceptSection, b.uniquenessToken())
}

// ContinuationPrompt builds the request for chapter chapterNum from the full
// chapter history and the reader's latest decision. The seed concept is
// carried forward only when present on the first chapter of the history.
func (b *PromptBuilder) ContinuationPrompt(history []models.Chapter, genre, author, decision string, chapterNum int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Genre: %s, Author Style: %s\n", genre, author)
	if len(history) > 0 && history[0].SeedConcept != "" {
		fmt.Fprintf(&sb, "Original Story Concept: %s\n", history[0].SeedConcept)
	}
	sb.WriteString("\n")
	for _, chapter := range history {
		sb.WriteString(chapter.Body)
		sb.WriteString("\n\n")
	}

	return fmt.Sprintf(`Here is the story so far, written in the style of %[1]s:

%[2]s
The reader has chosen: %[3]s

UNIQUENESS ELEMENT:
- %[4]s

NOTE: The Story must end at Chapter Number %[5]d. Plan the story accordingly.

Based on this decision, write Chapter %[6]d of the story. The chapter should:
1. Continue naturally from the reader's choice
2. Be approximately 300-500 words
3. Advance the plot meaningfully
4. Maintain %[1]s's distinctive writing style throughout
5. Stay true to the established story tone and direction
6. End with two compelling new decisions for the reader
7. Feel fresh and unique from previous generations

ARTISTIC PRIORITY: Authentic %[1]s style and compelling storytelling come first. Focus on creating a natural continuation that feels true to the established narrative.

Format your response as:

**Chapter %[6]d**
[Your story content here in %[1]s's style]

**Choose your path:**
A) [First decision option]
B) [Second decision option]`, author, sb.String(), decision, b.uniquenessToken(), FinalChapter, chapterNum)
}

func (b *PromptBuilder) uniquenessToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	ts := b.now().Unix()
	variants := []string{
		fmt.Sprintf("Generated at timestamp %d", ts),
		fmt.Sprintf("Story variant #%d", ts%1000),
		fmt.Sprintf("Creativity factor: %.2f", 0.1+b.rnd.Float64()*0.9),
	}
	return variants[b.rnd.Intn(len(variants))]
}
