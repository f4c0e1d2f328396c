package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chsoares/org-classifier/internal/logger"
)

type payload struct {
	URL    string `json:"url"`
	Method string `json:"method"`
}

// stores returns both implementations so every test covers the shared
// contract.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	disk, err := NewDiskStore(t.TempDir(), logger.NewNoOp())
	require.NoError(t, err)
	return map[string]Store{
		"disk":   disk,
		"memory": NewMemoryStore(),
	}
}

func TestKey(t *testing.T) {
	// Key normalization makes lookups case- and whitespace-insensitive.
	assert.Equal(t, Key("Acme Mutual"), Key("  acme mutual  "))
	assert.Equal(t, Key("ACME MUTUAL"), Key("acme mutual"))
	assert.NotEqual(t, Key("Acme Mutual"), Key("Acme Mutua"))
	assert.Len(t, Key("anything"), 64)
}

func TestPutGetRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			in := payload{URL: "https://acme.com", Method: "search_engine"}
			require.NoError(t, store.Put(NamespaceWebsiteLookup, "Acme Mutual", in))

			var out payload
			hit, err := store.Get(NamespaceWebsiteLookup, "Acme Mutual", &out)
			require.NoError(t, err)
			require.True(t, hit)
			assert.Equal(t, in, out)

			// Casing variance still hits.
			hit, err = store.Get(NamespaceWebsiteLookup, "ACME MUTUAL", &out)
			require.NoError(t, err)
			assert.True(t, hit)
		})
	}
}

func TestGetMiss(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var out payload
			hit, err := store.Get(NamespaceClassification, "Unknown Org", &out)
			require.NoError(t, err)
			assert.False(t, hit)
			assert.False(t, store.Exists(NamespaceClassification, "Unknown Org"))
		})
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(NamespaceWebsiteLookup, "Acme", payload{URL: "u"}))

			var out payload
			hit, err := store.Get(NamespaceContentExtraction, "Acme", &out)
			require.NoError(t, err)
			assert.False(t, hit)
		})
	}
}

func TestClearScoping(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(NamespaceWebsiteLookup, "Org A", payload{URL: "a"}))
			require.NoError(t, store.Put(NamespaceWebsiteLookup, "Org B", payload{URL: "b"}))
			require.NoError(t, store.Put(NamespaceClassification, "Org A", payload{URL: "a"}))

			t.Run("by organization", func(t *testing.T) {
				removed, err := store.Clear("", "Org A")
				require.NoError(t, err)
				assert.Equal(t, 2, removed)
				assert.False(t, store.Exists(NamespaceWebsiteLookup, "Org A"))
				assert.True(t, store.Exists(NamespaceWebsiteLookup, "Org B"))
			})

			t.Run("by namespace", func(t *testing.T) {
				require.NoError(t, store.Put(NamespaceWebsiteLookup, "Org A", payload{URL: "a"}))
				removed, err := store.Clear(NamespaceWebsiteLookup, "")
				require.NoError(t, err)
				assert.Equal(t, 2, removed)
			})

			t.Run("everything", func(t *testing.T) {
				require.NoError(t, store.Put(NamespaceFullResult, "Org C", payload{URL: "c"}))
				removed, err := store.Clear("", "")
				require.NoError(t, err)
				assert.GreaterOrEqual(t, removed, 1)

				stats, err := store.Stats()
				require.NoError(t, err)
				assert.Zero(t, stats.TotalEntries)
			})
		})
	}
}

func TestListKeys(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(NamespaceFullResult, "Beta Corp", payload{}))
			require.NoError(t, store.Put(NamespaceFullResult, "Alpha Inc", payload{}))

			names, err := store.ListKeys(NamespaceFullResult)
			require.NoError(t, err)
			assert.Equal(t, []string{"Alpha Inc", "Beta Corp"}, names)
		})
	}
}

func TestInfoAndStats(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(NamespaceWebsiteLookup, "Acme", payload{URL: "u"}))

			info, err := store.Info(NamespaceWebsiteLookup, "Acme")
			require.NoError(t, err)
			require.NotNil(t, info)
			assert.Equal(t, "Acme", info.OrganizationName)
			assert.Equal(t, NamespaceWebsiteLookup, info.CacheType)
			assert.Positive(t, info.SizeBytes)
			assert.False(t, info.Timestamp.IsZero())

			stats, err := store.Stats()
			require.NoError(t, err)
			assert.Equal(t, 1, stats.TotalEntries)
			assert.Equal(t, 1, stats.ByNamespace[NamespaceWebsiteLookup].Entries)
		})
	}
}

func TestDiskCorruptedEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	disk, err := NewDiskStore(dir, logger.NewNoOp())
	require.NoError(t, err)

	path := filepath.Join(dir, string(NamespaceWebsiteLookup), Key("Broken Org")+".json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	var out payload
	hit, err := disk.Get(NamespaceWebsiteLookup, "Broken Org", &out)
	require.NoError(t, err, "corrupted entries degrade to a miss")
	assert.False(t, hit)
}

func TestUnknownNamespaceRejected(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Put(Namespace("bogus"), "Acme", payload{})
			assert.ErrorIs(t, err, ErrUnknownNamespace)
		})
	}
}
