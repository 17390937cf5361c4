package vfs

import "github.com/durablefs/vfs/internal/metadata"

// ReadOptions configures a path-level Read call.
type ReadOptions struct {
	Start         int64 // inclusive byte offset; 0 if unset
	End           int64 // inclusive byte offset; <=0 means read to EOF
	HasRange      bool  // whether Start/End should be honored
	HighWaterMark int
}

// WriteOptions configures a path-level Write call.
type WriteOptions struct {
	Mode uint32 // default 0o644 when creating
	Flag string // one of handle.Flag's string values; default "w"
	Tier metadata.Tier
	UID  uint32
	GID  uint32
}

// MkdirOptions configures Mkdir.
type MkdirOptions struct {
	Recursive bool
	Mode      uint32
}

// RmOptions configures Rm and Rmdir.
type RmOptions struct {
	Recursive bool
	Force     bool
}

// ReaddirOptions configures Readdir/List pagination and filtering.
type ReaddirOptions struct {
	Limit  int
	Cursor string // resumes after this child name
}

// CopyOptions configures CopyFile.
type CopyOptions struct {
	Overwrite    bool
	ErrorOnExist bool
}

// UtimesOptions sets atime/mtime explicitly, in milliseconds since epoch.
type UtimesOptions struct {
	ATime int64
	MTime int64
}

// FileInfo is a point-in-time snapshot of an entry's attributes, the
// return shape for Stat/Lstat.
type FileInfo struct {
	ID         int64
	Path       string
	Name       string
	Type       metadata.EntryType
	Mode       uint32
	UID        uint32
	GID        uint32
	NLink      int
	Size       int64
	LinkTarget string
	ATime      int64
	MTime      int64
	CTime      int64
	BirthTime  int64
	Tier       metadata.Tier
}

func infoFromEntry(e *metadata.Entry) FileInfo {
	info := FileInfo{
		ID:        e.ID,
		Path:      e.Path,
		Name:      e.Name,
		Type:      e.Type,
		Mode:      e.Mode,
		UID:       e.UID,
		GID:       e.GID,
		NLink:     e.NLink,
		Size:      e.Size,
		ATime:     e.ATime,
		MTime:     e.MTime,
		CTime:     e.CTime,
		BirthTime: e.BirthTime,
		Tier:      e.Tier,
	}
	if e.LinkTarget != nil {
		info.LinkTarget = *e.LinkTarget
	}
	return info
}

// IsDir reports whether the snapshot describes a directory.
func (fi FileInfo) IsDir() bool { return fi.Type == metadata.TypeDirectory }

// DirEntry is one child reported by Readdir/List.
type DirEntry struct {
	Name string
	Type metadata.EntryType
}

// ReaddirResult is a page of directory children plus the cursor to resume
// from for the next page.
type ReaddirResult struct {
	Entries    []DirEntry
	NextCursor string
	HasMore    bool
}
