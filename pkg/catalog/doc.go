/*
Package catalog persists an index of the engine's on-disk artifacts —
packed hailstorm resource clusters and finalized config blobs — in a
single bbolt database, so enginectl and tests can resolve a named
artifact to its path, size, and content hash without re-reading or
re-parsing every blob on every startup.

# Layout

Two buckets, one JSON-encoded entry per key:

	clusters: name -> ClusterEntry{Path, Size, Resources, PackedAt, ContentHash}
	configs:  name -> ConfigEntry{Path, Size, FinalizedAt, ContentHash}

# Usage

	cat, err := catalog.Open(dataDir)
	if err != nil { ... }
	defer cat.Close()

	cat.PutCluster(catalog.ClusterEntry{
		Name: "level1", Path: "level1.hsc", Size: size, Resources: n,
		PackedAt: time.Now(),
	})

	entry, err := cat.GetCluster("level1")

Entries are opaque index records: catalog never opens or validates the
blobs it indexes, leaving that to pkg/hailstorm and pkg/config.
*/
package catalog
