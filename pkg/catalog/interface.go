package catalog

import (
	"time"

	"github.com/google/uuid"
)

// ClusterEntry indexes one packed hailstorm resource cluster on disk.
type ClusterEntry struct {
	// ID is a stable record id, independent of Name, assigned the first
	// time an entry is put; it survives a later PutCluster under the same
	// Name that updates the other fields.
	ID          uuid.UUID
	Name        string
	Path        string
	Size        int64
	Resources   int
	PackedAt    time.Time
	ContentHash string // hex sha256 of the packed bytes
}

// ConfigEntry indexes one finalized config blob on disk.
type ConfigEntry struct {
	ID          uuid.UUID
	Name        string
	Path        string
	Size        int64
	FinalizedAt time.Time
	ContentHash string
}

// Catalog persists an index of packed hailstorm clusters and finalized
// config blobs, so enginectl and test tooling can look up a named
// artifact's location and provenance without re-reading every blob from
// disk on every startup.
type Catalog interface {
	PutCluster(e ClusterEntry) error
	GetCluster(name string) (*ClusterEntry, error)
	ListClusters() ([]ClusterEntry, error)
	DeleteCluster(name string) error

	PutConfig(e ConfigEntry) error
	GetConfig(name string) (*ConfigEntry, error)
	ListConfigs() ([]ConfigEntry, error)
	DeleteConfig(name string) error

	// Close releases the underlying database handle.
	Close() error
}
