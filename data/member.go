package data

import (
	"encoding/json"
	"io/fs"
	"os"
	"time"
)

// MemberType identifies the kind of filesystem object an archived member
// was produced from.
type MemberType int

const (
	MemberTypeFile MemberType = iota
	MemberTypeDirectory
	MemberTypeSymlink
	MemberTypeOther
)

func (t MemberType) String() string {
	switch t {
	case MemberTypeFile:
		return "file"
	case MemberTypeDirectory:
		return "directory"
	case MemberTypeSymlink:
		return "symlink"
	case MemberTypeOther:
		return "other"
	default:
		return "unknown"
	}
}

// MemberRecord describes one entry written into an archive. It is the unit
// stored by catalog backends and listed by the builder's manifest.
type MemberRecord struct {
	// Unique record ID
	ID string `json:"id"`

	// Build the member belongs to
	BuildID string `json:"build_id"`

	// Archive-internal member key (logical name, slash separated)
	Key string `json:"key"`

	// On-disk path the member was read from
	DiskPath string `json:"disk_path"`

	Type MemberType  `json:"type"`
	Mode fs.FileMode `json:"mode"`
	Size int64       `json:"size"`

	// Symlink target, empty for other types
	LinkTarget string `json:"link_target,omitempty"`

	ModifyTime time.Time `json:"modify_time"`
	CreateTime time.Time `json:"create_time"`
}

// NewMemberRecord builds a record from the stat of a visited entry.
func NewMemberRecord(buildID, key, diskPath string, info os.FileInfo) *MemberRecord {
	record := &MemberRecord{
		BuildID:    buildID,
		Key:        key,
		DiskPath:   diskPath,
		Type:       memberTypeOf(info.Mode()),
		Mode:       info.Mode(),
		Size:       info.Size(),
		ModifyTime: info.ModTime(),
		CreateTime: time.Now(),
	}

	if record.Type == MemberTypeDirectory {
		record.Size = 0
	}

	return record
}

func memberTypeOf(mode fs.FileMode) MemberType {
	switch {
	case mode.IsDir():
		return MemberTypeDirectory
	case mode&fs.ModeSymlink != 0:
		return MemberTypeSymlink
	case mode.IsRegular():
		return MemberTypeFile
	default:
		return MemberTypeOther
	}
}

// Marshal provides JSON serialization for MemberRecord.
func (m *MemberRecord) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// Unmarshal provides JSON deserialization for MemberRecord.
func (m *MemberRecord) Unmarshal(data []byte) error {
	return json.Unmarshal(data, m)
}
