package config

import "github.com/ronak0808/CDP-chatbot/internal/models"

// DefaultSnippetLength is the number of runes of section content shown per result.
const DefaultSnippetLength = 200

// DefaultCollections are loaded at startup when none are configured.
var DefaultCollections = []string{"segment", "mparticle", "lytics", "zeotap"}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = 20
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 16 << 20
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "json"
	}
	if cfg.Storage.DocsPath == "" {
		cfg.Storage.DocsPath = "./data/docs"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/db/docs.db"
	}
	if cfg.Index.Collections == nil {
		cfg.Index.Collections = append([]string(nil), DefaultCollections...)
	}
	if cfg.Search.DefaultTopK == 0 {
		cfg.Search.DefaultTopK = 3
	}
	if cfg.Search.MaxTopK == 0 {
		cfg.Search.MaxTopK = 50
	}
	if cfg.Search.MinScore == nil {
		m := models.DefaultMinScore
		cfg.Search.MinScore = &m
	}
	if cfg.Search.SnippetLength == 0 {
		cfg.Search.SnippetLength = DefaultSnippetLength
	}
	if cfg.Watch.Patterns == nil {
		cfg.Watch.Patterns = []string{"*_docs.json"}
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 500
	}
}
