package vfs

import (
	"time"

	"github.com/durablefs/vfs/internal/watch"
)

func (f *FS) emitCreate(path string, isDir bool, size int64) {
	f.notify(watch.Event{Type: watch.EventCreate, Path: path, Timestamp: nowMillis(), Size: size, IsDirectory: isDir})
}

func (f *FS) emitModify(path string, size, mtime int64) {
	f.notify(watch.Event{Type: watch.EventModify, Path: path, Timestamp: nowMillis(), Size: size, MTime: mtime})
}

func (f *FS) emitDelete(path string, isDir bool) {
	f.notify(watch.Event{Type: watch.EventDelete, Path: path, Timestamp: nowMillis(), IsDirectory: isDir})
}

func (f *FS) emitRename(oldPath, newPath string, isDir bool) {
	f.notify(watch.Event{Type: watch.EventRename, Path: newPath, OldPath: oldPath, Timestamp: nowMillis(), IsDirectory: isDir})
}

func (f *FS) notify(ev watch.Event) {
	if f.watch != nil {
		f.watch.Notify(ev)
	}
}

func nowMillis() int64 { return time.Now().UnixMilli() }
