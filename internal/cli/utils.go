// Package cli provides output formatting and an HTTP client for the cdpdocs command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ronak0808/CDP-chatbot/internal/models"
	"github.com/ronak0808/CDP-chatbot/internal/search"
	"github.com/ronak0808/CDP-chatbot/internal/server"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one tab-separated line per result.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// WriteSearchResults writes search results to w in the given format.
// Content is shortened to snippetLen runes in text and compact output.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat, snippetLen int) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for _, result := range response.Results {
			fmt.Fprintf(w, "%d\t%.4f\t%s\t%s\n",
				result.Rank, result.Score, result.Title, search.Snippet(result.Content, snippetLen))
		}
		return nil
	default:
		writeSearchResultsText(w, response, snippetLen)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse, snippetLen int) {
	if len(response.Results) == 0 {
		fmt.Fprintf(w, "\nNo results for %q in %s (%dms)\n", response.Query, response.Collection, response.QueryTime)
		if response.DidYouMean != "" {
			fmt.Fprintf(w, "Did you mean: %q?\n", response.DidYouMean)
		}
		return
	}
	fmt.Fprintf(w, "\nFound %d results for %q in %s (%dms)\n\n",
		response.Total, response.Query, response.Collection, response.QueryTime)
	for _, result := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f | Section: %d\n", result.Rank, result.Score, result.Position)
		if result.Title != "" {
			fmt.Fprintf(w, "Title: %s\n", result.Title)
		}
		fmt.Fprintf(w, "\n%s\n\n", search.Snippet(result.Content, snippetLen))
	}
}

// WriteCollections writes the collection listing as a table or JSON.
func WriteCollections(w io.Writer, response *server.CollectionsResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tSECTIONS\tFINGERPRINT")
	for _, c := range response.Collections {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", c.Key, c.Sections, c.Fingerprint)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if response.Generation != "" {
		fmt.Fprintf(w, "\ngeneration: %s\n", response.Generation)
	}
	return nil
}

// WriteStatus writes engine status as commented key/value lines or JSON.
func WriteStatus(w io.Writer, status *server.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	fmt.Fprintf(w, "collections:        %d   # loaded collections\n", status.Collections)
	fmt.Fprintf(w, "sections:           %d   # sections across all collections\n", status.Sections)
	fmt.Fprintf(w, "vocabulary:         %d   # distinct terms in the shared model\n", status.Vocabulary)
	fmt.Fprintf(w, "generation:         %s\n", status.Generation)
	if !status.BuiltAt.IsZero() {
		fmt.Fprintf(w, "built_at:           %s\n", status.BuiltAt.Format(time.RFC3339))
	}
	if status.UptimeSeconds > 0 {
		fmt.Fprintf(w, "uptime:             %s\n", time.Duration(status.UptimeSeconds)*time.Second)
	}
	fmt.Fprintf(w, "storage_backend:    %s\n", status.StorageBackend)
	fmt.Fprintf(w, "disk_usage_bytes:   %d\n", status.DiskUsageBytes)
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
