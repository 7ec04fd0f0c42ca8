//go:build linux

package watcher

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Filesystem magic numbers from statfs(2).
const (
	magicNFS  = 0x6969
	magicSMB  = 0x517B
	magicCIFS = 0xFF534D42
	magicSMB2 = 0xFE534D42
	magicFUSE = 0x65735546
)

// DetectFilesystemType classifies the filesystem of path. A missing file is
// classified by its directory.
func DetectFilesystemType(path string) FilesystemType {
	if path == "" {
		return FSTypeUnknown
	}
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		if err := unix.Statfs(filepath.Dir(path), &st); err != nil {
			return FSTypeUnknown
		}
	}
	return classifyMagic(int64(st.Type))
}

func classifyMagic(magic int64) FilesystemType {
	switch uint32(magic) {
	case magicNFS:
		return FSTypeNFS
	case magicSMB, magicCIFS, magicSMB2:
		return FSTypeSMB
	case magicFUSE:
		return FSTypeFUSE
	}
	return FSTypeLocal
}
