package model

// FDKind classifies what an open file descriptor points at.
type FDKind string

const (
	FDSocket FDKind = "socket"
	FDFile   FDKind = "file"
	FDOther  FDKind = "other"
)

// FDEntry is one entry of a process's descriptor table. Inode is only
// meaningful for sockets.
type FDEntry struct {
	FD    int    `json:"fd"`
	Kind  FDKind `json:"kind"`
	Inode uint64 `json:"inode,omitempty"`
}

// InodeIndex maps a kernel socket inode to the PID holding it.
type InodeIndex map[uint64]int
