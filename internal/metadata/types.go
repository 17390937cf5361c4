package metadata

// EntryType is the kind of filesystem node an Entry represents, mirroring
// the POSIX S_IFMT family.
type EntryType string

const (
	TypeFile      EntryType = "file"
	TypeDirectory EntryType = "directory"
	TypeSymlink   EntryType = "symlink"
	TypeBlock     EntryType = "block"
	TypeCharacter EntryType = "character"
	TypeFIFO      EntryType = "fifo"
	TypeSocket    EntryType = "socket"
)

// Tier is the storage tier backing a content-bearing entry's blob.
type Tier string

const (
	TierHot  Tier = "hot"
	TierWarm Tier = "warm"
	TierCold Tier = "cold"
)

// Entry is the unit of the namespace: a file, directory, symlink, or
// special node. Timestamps are milliseconds since epoch.
type Entry struct {
	ID         int64
	Path       string
	Name       string
	ParentID   *int64
	Type       EntryType
	Mode       uint32
	UID        uint32
	GID        uint32
	NLink      int
	Size       int64
	BlobID     *string
	LinkTarget *string
	ATime      int64
	MTime      int64
	CTime      int64
	BirthTime  int64
	Tier       Tier
}

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool { return e.Type == TypeDirectory }

// IsFile reports whether the entry is a regular file.
func (e *Entry) IsFile() bool { return e.Type == TypeFile }

// IsSymlink reports whether the entry is a symbolic link.
func (e *Entry) IsSymlink() bool { return e.Type == TypeSymlink }

// BlobRef is the storage descriptor for a file's content. Content is
// immutable once committed: updates always allocate a new blob id.
type BlobRef struct {
	ID        string
	Tier      Tier
	Size      int64
	Checksum  *string
	RefCount  int
	CreatedAt int64
}

// NewEntryFields carries the caller-supplied subset of Entry fields needed
// to create one; id and timestamps are assigned by the store.
type NewEntryFields struct {
	Path       string
	Name       string
	ParentID   *int64
	Type       EntryType
	Mode       uint32
	UID        uint32
	GID        uint32
	Size       int64
	BlobID     *string
	LinkTarget *string
	Tier       Tier
}

// EntryUpdate carries the subset of Entry fields an UpdateEntry call may
// change. Nil fields are left untouched.
type EntryUpdate struct {
	Path       *string
	Name       *string
	ParentID   **int64
	Mode       *uint32
	UID        *uint32
	GID        *uint32
	NLink      *int
	Size       *int64
	BlobID     **string
	LinkTarget *string
	ATime      *int64
	MTime      *int64
	Tier       *Tier
}

// Stats summarizes the namespace.
type Stats struct {
	FileCount int64
	DirCount  int64
	TotalSize int64
	BlobsByTier map[Tier]int64
}

// TransactionLogEntry is one row of the transaction recovery log.
type TransactionLogEntry struct {
	ID        int64
	StartedAt int64
	EndedAt   *int64
	Status    string
}
