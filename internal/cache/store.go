// Package cache provides disk-backed JSON caching keyed by organization name.
//
// Entries are partitioned into disjoint namespaces, one per pipeline stage
// plus one for complete results. Caching is an optimization, never a
// correctness dependency: every read error degrades to a miss and every
// write error is swallowed after logging.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Namespace identifies a cache tier.
type Namespace string

const (
	// NamespaceWebsiteLookup caches website resolution results.
	NamespaceWebsiteLookup Namespace = "website_lookup"
	// NamespaceContentExtraction caches extracted content.
	NamespaceContentExtraction Namespace = "content_extraction"
	// NamespaceClassification caches classification answers.
	NamespaceClassification Namespace = "classification"
	// NamespaceFullResult caches complete per-organization result records.
	NamespaceFullResult Namespace = "full_result"
)

// Namespaces lists all cache tiers in stage order.
var Namespaces = []Namespace{
	NamespaceWebsiteLookup,
	NamespaceContentExtraction,
	NamespaceClassification,
	NamespaceFullResult,
}

// ErrUnknownNamespace is returned for namespaces outside the fixed set.
var ErrUnknownNamespace = errors.New("unknown cache namespace")

// Valid reports whether n is one of the fixed namespaces.
func (n Namespace) Valid() bool {
	switch n {
	case NamespaceWebsiteLookup, NamespaceContentExtraction,
		NamespaceClassification, NamespaceFullResult:
		return true
	default:
		return false
	}
}

// Entry is the on-disk document shape: metadata plus a namespace-specific payload.
type Entry struct {
	OrganizationName string          `json:"organization_name"`
	CacheType        Namespace       `json:"cache_type"`
	Timestamp        time.Time       `json:"timestamp"`
	Data             json.RawMessage `json:"data"`
}

// EntryInfo is entry metadata without the payload.
type EntryInfo struct {
	OrganizationName string    `json:"organization_name"`
	CacheType        Namespace `json:"cache_type"`
	Timestamp        time.Time `json:"timestamp"`
	SizeBytes        int64     `json:"size_bytes"`
}

// NamespaceStats aggregates entry counts and sizes for one namespace.
type NamespaceStats struct {
	Entries   int   `json:"entries"`
	SizeBytes int64 `json:"size_bytes"`
}

// Stats aggregates cache-wide statistics.
type Stats struct {
	TotalEntries   int                          `json:"total_entries"`
	TotalSizeBytes int64                        `json:"total_size_bytes"`
	ByNamespace    map[Namespace]NamespaceStats `json:"by_namespace"`
}

// Store is the cache contract shared by the disk and in-memory implementations.
// Put marshals payload to JSON; Get unmarshals into out and reports a hit.
// Clear with zero-value arguments removes everything; a set namespace or
// organization name narrows the scope. ListKeys returns organization names.
type Store interface {
	Put(namespace Namespace, orgName string, payload any) error
	Get(namespace Namespace, orgName string, out any) (bool, error)
	Exists(namespace Namespace, orgName string) bool
	Clear(namespace Namespace, orgName string) (int, error)
	ListKeys(namespace Namespace) ([]string, error)
	Info(namespace Namespace, orgName string) (*EntryInfo, error)
	Stats() (*Stats, error)
}

// Key derives the storage key for an organization name: lowercase, trim,
// SHA-256. Hashing avoids filesystem-unsafe characters and unbounded key
// length while tolerating casing variance.
func Key(orgName string) string {
	normalized := strings.ToLower(strings.TrimSpace(orgName))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
