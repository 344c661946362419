package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ronak0808/CDP-chatbot/internal/models"
)

// DefaultMaxWords is the section length above which SplitSections emits parts.
const DefaultMaxWords = 400

var (
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)
	fenceRe   = regexp.MustCompile("^\\s*(```|~~~)")
)

// SplitSections splits markdown-ish text into sections at ATX headings.
// Headings inside fenced code blocks are ignored. Text before the first heading
// is titled defaultTitle. Sections with no body text are dropped, and sections
// longer than maxWords words are split into parts titled "Title (n/m)".
func SplitSections(text, defaultTitle string, maxWords int) []models.Section {
	var (
		sections []models.Section
		title    = defaultTitle
		body     strings.Builder
		inFence  bool
	)
	flush := func() {
		content := strings.TrimSpace(body.String())
		body.Reset()
		if content == "" {
			return
		}
		sections = append(sections, chunkSection(title, content, maxWords)...)
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if fenceRe.MatchString(line) {
			inFence = !inFence
		}
		if !inFence {
			if m := headingRe.FindStringSubmatch(line); m != nil {
				flush()
				title = strings.TrimSpace(m[2])
				continue
			}
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()
	return sections
}

// chunkSection splits content into word windows of at most maxWords words.
func chunkSection(title, content string, maxWords int) []models.Section {
	words := strings.Fields(content)
	if maxWords <= 0 || len(words) <= maxWords {
		return []models.Section{{Title: title, Content: content}}
	}
	total := (len(words) + maxWords - 1) / maxWords
	parts := make([]models.Section, 0, total)
	for i := 0; i < len(words); i += maxWords {
		end := min(i+maxWords, len(words))
		parts = append(parts, models.Section{
			Title:   fmt.Sprintf("%s (%d/%d)", title, len(parts)+1, total),
			Content: strings.Join(words[i:end], " "),
		})
	}
	return parts
}
