package cache

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests and when disk caching is
// disabled. Payloads round-trip through JSON so shape semantics match the
// disk store exactly.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Namespace]map[string]Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	entries := make(map[Namespace]map[string]Entry, len(Namespaces))
	for _, ns := range Namespaces {
		entries[ns] = make(map[string]Entry)
	}
	return &MemoryStore{entries: entries}
}

// Put stores a payload.
func (s *MemoryStore) Put(namespace Namespace, orgName string, payload any) error {
	if !namespace.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownNamespace, namespace)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[namespace][Key(orgName)] = Entry{
		OrganizationName: orgName,
		CacheType:        namespace,
		Timestamp:        time.Now().UTC(),
		Data:             data,
	}
	return nil
}

// Get reads a payload into out and reports a hit.
func (s *MemoryStore) Get(namespace Namespace, orgName string, out any) (bool, error) {
	if !namespace.Valid() {
		return false, fmt.Errorf("%w: %s", ErrUnknownNamespace, namespace)
	}

	s.mu.RLock()
	entry, ok := s.entries[namespace][Key(orgName)]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(entry.Data, out); err != nil {
		return false, nil
	}
	return true, nil
}

// Exists reports whether an entry is present.
func (s *MemoryStore) Exists(namespace Namespace, orgName string) bool {
	if !namespace.Valid() {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[namespace][Key(orgName)]
	return ok
}

// Clear removes entries, mirroring DiskStore.Clear scoping.
func (s *MemoryStore) Clear(namespace Namespace, orgName string) (int, error) {
	if namespace != "" && !namespace.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnknownNamespace, namespace)
	}

	targets := Namespaces
	if namespace != "" {
		targets = []Namespace{namespace}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, ns := range targets {
		if orgName != "" {
			key := Key(orgName)
			if _, ok := s.entries[ns][key]; ok {
				delete(s.entries[ns], key)
				removed++
			}
			continue
		}
		removed += len(s.entries[ns])
		s.entries[ns] = make(map[string]Entry)
	}
	return removed, nil
}

// ListKeys returns organization names present in a namespace, sorted.
func (s *MemoryStore) ListKeys(namespace Namespace) ([]string, error) {
	if namespace != "" && !namespace.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNamespace, namespace)
	}

	targets := Namespaces
	if namespace != "" {
		targets = []Namespace{namespace}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, ns := range targets {
		for _, entry := range s.entries[ns] {
			seen[entry.OrganizationName] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Info returns entry metadata, or nil if absent.
func (s *MemoryStore) Info(namespace Namespace, orgName string) (*EntryInfo, error) {
	if !namespace.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNamespace, namespace)
	}

	s.mu.RLock()
	entry, ok := s.entries[namespace][Key(orgName)]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	return &EntryInfo{
		OrganizationName: entry.OrganizationName,
		CacheType:        entry.CacheType,
		Timestamp:        entry.Timestamp,
		SizeBytes:        int64(len(entry.Data)),
	}, nil
}

// Stats aggregates entry counts and payload sizes per namespace.
func (s *MemoryStore) Stats() (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ByNamespace: make(map[Namespace]NamespaceStats, len(Namespaces))}
	for _, ns := range Namespaces {
		var nsStats NamespaceStats
		for _, entry := range s.entries[ns] {
			nsStats.Entries++
			nsStats.SizeBytes += int64(len(entry.Data))
		}
		stats.ByNamespace[ns] = nsStats
		stats.TotalEntries += nsStats.Entries
		stats.TotalSizeBytes += nsStats.SizeBytes
	}
	return stats, nil
}
