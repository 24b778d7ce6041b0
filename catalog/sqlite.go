package catalog

import (
	"context"
	"database/sql"
	"io/fs"
	"sync"
	"time"

	"github.com/tidwall/btree"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (CGO_ENABLED=0 compatible)

	"github.com/mwantia/tarbuild/data"
)

// SQLiteCatalog persists member records in a SQLite database, with an
// in-memory B-tree caching build/key pairs for fast existence checks.
type SQLiteCatalog struct {
	mu sync.RWMutex
	db *sql.DB

	// In-memory B-tree for fast key lookups
	keys *btree.Map[string, string]
}

// NewSQLiteCatalog opens a catalog at dbPath. Use ":memory:" for an
// in-memory database.
func NewSQLiteCatalog(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteCatalog{
		db:   db,
		keys: btree.NewMap[string, string](0),
	}, nil
}

// Name returns the identifier name defined for this catalog backend.
func (*SQLiteCatalog) Name() string {
	return "sqlite"
}

// Open creates the schema and warms the key cache.
func (sc *SQLiteCatalog) Open(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	schema := `
	CREATE TABLE IF NOT EXISTS tarbuild_members (
		id TEXT PRIMARY KEY,
		build_id TEXT NOT NULL,
		key TEXT NOT NULL,
		disk_path TEXT NOT NULL,
		type INTEGER NOT NULL,
		mode INTEGER NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		link_target TEXT,
		modify_time INTEGER NOT NULL,
		create_time INTEGER NOT NULL,
		UNIQUE(build_id, key)
	);
	CREATE INDEX IF NOT EXISTS idx_tarbuild_members_build ON tarbuild_members(build_id);
	`

	if _, err := sc.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	rows, err := sc.db.QueryContext(ctx, `SELECT build_id, key, id FROM tarbuild_members`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var buildID, key, id string
		if err := rows.Scan(&buildID, &key, &id); err != nil {
			return err
		}

		sc.keys.Set(recordKey(buildID, key), id)
	}

	return rows.Err()
}

func (sc *SQLiteCatalog) Close(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.db.Close()
}

func (sc *SQLiteCatalog) PutMember(ctx context.Context, record *data.MemberRecord) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var linkTarget sql.NullString
	if record.LinkTarget != "" {
		linkTarget = sql.NullString{String: record.LinkTarget, Valid: true}
	}

	_, err := sc.db.ExecContext(ctx, `
		INSERT INTO tarbuild_members (id, build_id, key, disk_path, type, mode, size, link_target, modify_time, create_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(build_id, key) DO UPDATE SET
			id = excluded.id,
			disk_path = excluded.disk_path,
			type = excluded.type,
			mode = excluded.mode,
			size = excluded.size,
			link_target = excluded.link_target,
			modify_time = excluded.modify_time,
			create_time = excluded.create_time
	`, record.ID, record.BuildID, record.Key, record.DiskPath,
		int(record.Type), uint32(record.Mode), record.Size, linkTarget,
		record.ModifyTime.Unix(), record.CreateTime.Unix())

	if err != nil {
		return err
	}

	sc.keys.Set(recordKey(record.BuildID, record.Key), record.ID)
	return nil
}

func (sc *SQLiteCatalog) GetMember(ctx context.Context, buildID, key string) (*data.MemberRecord, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	// Check B-tree first
	if _, exists := sc.keys.Get(recordKey(buildID, key)); !exists {
		return nil, data.ErrNotExist
	}

	row := sc.db.QueryRowContext(ctx, `
		SELECT id, build_id, key, disk_path, type, mode, size, link_target, modify_time, create_time
		FROM tarbuild_members WHERE build_id = ? AND key = ?
	`, buildID, key)

	return scanMember(row)
}

func (sc *SQLiteCatalog) ListMembers(ctx context.Context, buildID string) ([]*data.MemberRecord, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	rows, err := sc.db.QueryContext(ctx, `
		SELECT id, build_id, key, disk_path, type, mode, size, link_target, modify_time, create_time
		FROM tarbuild_members WHERE build_id = ? ORDER BY key
	`, buildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*data.MemberRecord
	for rows.Next() {
		record, err := scanMember(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

func (sc *SQLiteCatalog) DeleteBuild(ctx context.Context, buildID string) (int, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	result, err := sc.db.ExecContext(ctx, `DELETE FROM tarbuild_members WHERE build_id = ?`, buildID)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	prefix := recordKey(buildID, "")

	var stale []string
	sc.keys.Ascend(prefix, func(key string, id string) bool {
		if len(key) < len(prefix) || key[:len(prefix)] != prefix {
			return false
		}

		stale = append(stale, key)
		return true
	})

	for _, key := range stale {
		sc.keys.Delete(key)
	}

	return int(affected), nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (*data.MemberRecord, error) {
	var record data.MemberRecord
	var recordType int
	var mode uint32
	var linkTarget sql.NullString
	var modifyTime, createTime int64

	err := row.Scan(&record.ID, &record.BuildID, &record.Key, &record.DiskPath,
		&recordType, &mode, &record.Size, &linkTarget, &modifyTime, &createTime)

	if err == sql.ErrNoRows {
		return nil, data.ErrNotExist
	}
	if err != nil {
		return nil, err
	}

	record.Type = data.MemberType(recordType)
	record.Mode = fs.FileMode(mode)
	record.ModifyTime = time.Unix(modifyTime, 0)
	record.CreateTime = time.Unix(createTime, 0)

	if linkTarget.Valid {
		record.LinkTarget = linkTarget.String
	}

	return &record, nil
}
