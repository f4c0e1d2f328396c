package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/chsoares/org-classifier/internal/logger"
)

// dirPerm is the mode for created cache directories.
const dirPerm = 0o755

// filePerm is the mode for written cache files.
const filePerm = 0o644

// DiskStore persists one JSON document per (namespace, organization) pair
// under baseDir/<namespace>/<key>.json.
type DiskStore struct {
	baseDir string
	log     logger.Interface
}

// NewDiskStore creates a disk store rooted at baseDir and ensures the
// per-namespace directory layout exists.
func NewDiskStore(baseDir string, log logger.Interface) (*DiskStore, error) {
	for _, ns := range Namespaces {
		if err := os.MkdirAll(filepath.Join(baseDir, string(ns)), dirPerm); err != nil {
			return nil, fmt.Errorf("create cache directory for %s: %w", ns, err)
		}
	}

	return &DiskStore{
		baseDir: baseDir,
		log:     log.WithComponent("cache"),
	}, nil
}

// path returns the cache file path for a (namespace, organization) pair.
func (s *DiskStore) path(namespace Namespace, orgName string) string {
	return filepath.Join(s.baseDir, string(namespace), Key(orgName)+".json")
}

// Put writes an entry, overwriting any previous one wholesale.
// Write failures are logged and swallowed: the pipeline must work with a
// broken cache.
func (s *DiskStore) Put(namespace Namespace, orgName string, payload any) error {
	if !namespace.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownNamespace, namespace)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("Failed to marshal cache payload",
			"namespace", namespace, "organization", orgName, "error", err)
		return nil
	}

	entry := Entry{
		OrganizationName: orgName,
		CacheType:        namespace,
		Timestamp:        time.Now().UTC(),
		Data:             data,
	}

	doc, err := json.MarshalIndent(&entry, "", "  ")
	if err != nil {
		s.log.Error("Failed to marshal cache entry",
			"namespace", namespace, "organization", orgName, "error", err)
		return nil
	}

	if err := os.WriteFile(s.path(namespace, orgName), doc, filePerm); err != nil {
		s.log.Error("Failed to write cache entry",
			"namespace", namespace, "organization", orgName, "error", err)
		return nil
	}

	s.log.Debug("Cache entry written", "namespace", namespace, "organization", orgName)
	return nil
}

// Get reads an entry's payload into out. Missing or unreadable entries are
// reported as misses, never as errors.
func (s *DiskStore) Get(namespace Namespace, orgName string, out any) (bool, error) {
	if !namespace.Valid() {
		return false, fmt.Errorf("%w: %s", ErrUnknownNamespace, namespace)
	}

	doc, err := os.ReadFile(s.path(namespace, orgName))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("Failed to read cache entry, treating as miss",
				"namespace", namespace, "organization", orgName, "error", err)
		}
		return false, nil
	}

	var entry Entry
	if err := json.Unmarshal(doc, &entry); err != nil {
		s.log.Warn("Corrupted cache entry, treating as miss",
			"namespace", namespace, "organization", orgName, "error", err)
		return false, nil
	}

	if err := json.Unmarshal(entry.Data, out); err != nil {
		s.log.Warn("Cache payload shape mismatch, treating as miss",
			"namespace", namespace, "organization", orgName, "error", err)
		return false, nil
	}

	return true, nil
}

// Exists reports whether an entry is present without reading it.
func (s *DiskStore) Exists(namespace Namespace, orgName string) bool {
	if !namespace.Valid() {
		return false
	}
	_, err := os.Stat(s.path(namespace, orgName))
	return err == nil
}

// Clear removes entries and returns the number removed. A zero-value
// namespace means all namespaces; an empty orgName means all organizations.
func (s *DiskStore) Clear(namespace Namespace, orgName string) (int, error) {
	if namespace != "" && !namespace.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnknownNamespace, namespace)
	}

	targets := Namespaces
	if namespace != "" {
		targets = []Namespace{namespace}
	}

	removed := 0
	for _, ns := range targets {
		if orgName != "" {
			p := s.path(ns, orgName)
			if err := os.Remove(p); err == nil {
				removed++
			} else if !os.IsNotExist(err) {
				s.log.Warn("Failed to remove cache entry",
					"namespace", ns, "organization", orgName, "error", err)
			}
			continue
		}

		files, err := filepath.Glob(filepath.Join(s.baseDir, string(ns), "*.json"))
		if err != nil {
			continue
		}
		for _, f := range files {
			if err := os.Remove(f); err == nil {
				removed++
			}
		}
	}

	s.log.Info("Cache cleared",
		"namespace", string(namespace), "organization", orgName, "removed", removed)
	return removed, nil
}

// ListKeys returns the organization names present in a namespace, sorted. A
// zero-value namespace lists every namespace, deduplicated. Corrupted files
// are skipped.
func (s *DiskStore) ListKeys(namespace Namespace) ([]string, error) {
	if namespace != "" && !namespace.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNamespace, namespace)
	}

	targets := Namespaces
	if namespace != "" {
		targets = []Namespace{namespace}
	}

	seen := make(map[string]struct{})
	for _, ns := range targets {
		files, err := filepath.Glob(filepath.Join(s.baseDir, string(ns), "*.json"))
		if err != nil {
			continue
		}
		for _, f := range files {
			doc, err := os.ReadFile(f)
			if err != nil {
				continue
			}
			var entry Entry
			if err := json.Unmarshal(doc, &entry); err != nil {
				continue
			}
			if entry.OrganizationName != "" {
				seen[entry.OrganizationName] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Info returns entry metadata without loading the payload, or nil if absent.
func (s *DiskStore) Info(namespace Namespace, orgName string) (*EntryInfo, error) {
	if !namespace.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNamespace, namespace)
	}

	p := s.path(namespace, orgName)
	st, err := os.Stat(p)
	if err != nil {
		return nil, nil
	}

	doc, err := os.ReadFile(p)
	if err != nil {
		return nil, nil
	}

	var entry Entry
	if err := json.Unmarshal(doc, &entry); err != nil {
		return nil, nil
	}

	return &EntryInfo{
		OrganizationName: entry.OrganizationName,
		CacheType:        entry.CacheType,
		Timestamp:        entry.Timestamp,
		SizeBytes:        st.Size(),
	}, nil
}

// Stats aggregates entry counts and byte sizes per namespace.
func (s *DiskStore) Stats() (*Stats, error) {
	stats := &Stats{ByNamespace: make(map[Namespace]NamespaceStats, len(Namespaces))}

	for _, ns := range Namespaces {
		files, err := filepath.Glob(filepath.Join(s.baseDir, string(ns), "*.json"))
		if err != nil {
			continue
		}

		var nsStats NamespaceStats
		for _, f := range files {
			st, err := os.Stat(f)
			if err != nil {
				continue
			}
			nsStats.Entries++
			nsStats.SizeBytes += st.Size()
		}

		stats.ByNamespace[ns] = nsStats
		stats.TotalEntries += nsStats.Entries
		stats.TotalSizeBytes += nsStats.SizeBytes
	}

	return stats, nil
}
