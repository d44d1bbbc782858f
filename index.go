package ragchat

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IndexConfig names the vector index that an ingestion job seeds from a set
// of GitHub repositories. The chat client only carries and reports it.
type IndexConfig struct {
	Index     string   // index name
	Host      string   // index host URL
	Namespace string   // namespace inside the index
	Repos     []string // "owner/name" repository identifiers
}

// DefaultIndexConfig returns the stock index record.
func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		Index:     "rag",
		Host:      "https://rag-cp3mwrj.svc.aped-4627-b74a.pinecone.io",
		Namespace: "__default__",
		Repos:     []string{"Organisation_name/repository_name"},
	}
}

// Validate checks that the record names an index, an absolute host URL, and
// well-formed repository identifiers.
func (c IndexConfig) Validate() error {
	if c.Index == "" {
		return fmt.Errorf("index name must not be empty: %w", ErrValidation)
	}
	u, err := url.Parse(c.Host)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("index host %q must be an absolute URL: %w", c.Host, ErrValidation)
	}
	for i, r := range c.Repos {
		owner, name, ok := strings.Cut(r, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			return fmt.Errorf("repo %d %q must be owner/name: %w", i, r, ErrValidation)
		}
	}
	return nil
}

// MatchRepos returns the repositories matching a doublestar glob such as
// "acme/*". An empty pattern matches everything.
func (c IndexConfig) MatchRepos(pattern string) ([]string, error) {
	if pattern == "" {
		return append([]string(nil), c.Repos...), nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid repo pattern %q: %w", pattern, ErrValidation)
	}
	var out []string
	for _, r := range c.Repos {
		ok, err := doublestar.Match(pattern, r)
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", r, err)
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}
