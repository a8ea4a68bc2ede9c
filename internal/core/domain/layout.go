package domain

import "path/filepath"

// Workspace layout. Everything deja writes lives under one metadata
// directory at the workspace root; the configuration file next to it marks
// the root itself.
const (
	// DejaDirName is the metadata directory at the workspace root.
	DejaDirName = ".deja"

	// ConfigFileName marks the workspace root and holds its settings.
	ConfigFileName = "deja.yaml"

	// DatabaseFileName holds the recorded provenance log.
	DatabaseFileName = "provenance.db"

	// BlobsDirName holds content snapshots of generated outputs.
	BlobsDirName = "blobs"

	// LockFileName is the workspace write lock.
	LockFileName = "LOCK"

	// DebugLogFile collects debug output when enabled.
	DebugLogFile = "debug.log"
)

// File modes for everything deja creates.
const (
	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultDejaPath returns the metadata directory, workspace relative.
func DefaultDejaPath() string {
	return DejaDirName
}

// DefaultDatabasePath returns the provenance database path, workspace
// relative.
func DefaultDatabasePath() string {
	return filepath.Join(DejaDirName, DatabaseFileName)
}

// DefaultLockPath returns the write lock path, workspace relative.
func DefaultLockPath() string {
	return filepath.Join(DejaDirName, LockFileName)
}

// DefaultBlobsPath returns the content snapshot directory, workspace
// relative.
func DefaultBlobsPath() string {
	return filepath.Join(DejaDirName, BlobsDirName)
}

// DefaultDebugLogPath returns the debug log path, workspace relative.
func DefaultDebugLogPath() string {
	return filepath.Join(DejaDirName, DebugLogFile)
}
