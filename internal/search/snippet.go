package search

import "github.com/ronak0808/CDP-chatbot/pkg/utils"

// Snippet collapses whitespace in content and truncates it to maxLen runes for display.
func Snippet(content string, maxLen int) string {
	return utils.Truncate(utils.CollapseWhitespace(content), maxLen)
}
