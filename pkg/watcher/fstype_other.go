//go:build !linux

package watcher

// DetectFilesystemType is only implemented on Linux; elsewhere fsnotify is
// tried first and polling is the fallback.
func DetectFilesystemType(string) FilesystemType {
	return FSTypeUnknown
}
