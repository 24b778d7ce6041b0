// Package catalog persists records of archived members, keyed by build ID
// and member key. Backends share one interface so a build can be cataloged
// into memory, SQLite, PostgreSQL or Consul KV interchangeably.
package catalog

import (
	"context"

	"github.com/mwantia/tarbuild/data"
)

// Catalog stores member records per build.
type Catalog interface {
	// Name returns the identifier name defined for this catalog backend.
	Name() string

	// Open is part of the lifecycle behaviour and prepares the backend for
	// use (connection checks, schema creation).
	Open(ctx context.Context) error

	// Close releases the backend's resources.
	Close(ctx context.Context) error

	// PutMember stores one member record. Storing the same build/key pair
	// again overwrites the previous record.
	PutMember(ctx context.Context, record *data.MemberRecord) error

	// GetMember returns the record for key within a build.
	// Returns data.ErrNotExist when no such record exists.
	GetMember(ctx context.Context, buildID, key string) (*data.MemberRecord, error)

	// ListMembers returns all records of a build in member key order.
	ListMembers(ctx context.Context, buildID string) ([]*data.MemberRecord, error)

	// DeleteBuild removes all records of a build, returning how many were
	// deleted.
	DeleteBuild(ctx context.Context, buildID string) (int, error)
}
