package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/tidwall/btree"

	"github.com/mwantia/tarbuild/data"
)

// MemoryCatalog keeps member records in an in-memory B-tree. Records are
// lost when the process exits; intended for tests and one-shot builds.
type MemoryCatalog struct {
	mu      sync.RWMutex
	records *btree.Map[string, *data.MemberRecord]
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		records: btree.NewMap[string, *data.MemberRecord](0),
	}
}

// Name returns the identifier name defined for this catalog backend.
func (*MemoryCatalog) Name() string {
	return "memory"
}

func (mc *MemoryCatalog) Open(ctx context.Context) error {
	return nil
}

func (mc *MemoryCatalog) Close(ctx context.Context) error {
	return nil
}

func (mc *MemoryCatalog) PutMember(ctx context.Context, record *data.MemberRecord) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	stored := *record
	mc.records.Set(recordKey(record.BuildID, record.Key), &stored)

	return nil
}

func (mc *MemoryCatalog) GetMember(ctx context.Context, buildID, key string) (*data.MemberRecord, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	record, exists := mc.records.Get(recordKey(buildID, key))
	if !exists {
		return nil, data.ErrNotExist
	}

	found := *record
	return &found, nil
}

func (mc *MemoryCatalog) ListMembers(ctx context.Context, buildID string) ([]*data.MemberRecord, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	prefix := recordKey(buildID, "")

	var records []*data.MemberRecord
	mc.records.Ascend(prefix, func(key string, record *data.MemberRecord) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}

		found := *record
		records = append(records, &found)
		return true
	})

	return records, nil
}

func (mc *MemoryCatalog) DeleteBuild(ctx context.Context, buildID string) (int, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	prefix := recordKey(buildID, "")

	var keys []string
	mc.records.Ascend(prefix, func(key string, record *data.MemberRecord) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}

		keys = append(keys, key)
		return true
	})

	for _, key := range keys {
		mc.records.Delete(key)
	}

	return len(keys), nil
}

// recordKey composes the B-tree key. Build IDs are UUIDs and member keys
// never start with "/", so the separator keeps builds from shadowing each
// other in prefix scans.
func recordKey(buildID, key string) string {
	return buildID + "/" + key
}
