package collection

import (
	"github.com/cespare/xxhash/v2"

	"github.com/ronak0808/CDP-chatbot/internal/models"
)

// Fingerprint hashes the ordered titles and contents of sections.
func Fingerprint(sections []models.Section) uint64 {
	h := xxhash.New()
	for _, sec := range sections {
		_, _ = h.WriteString(sec.Title)
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(sec.Content)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}
