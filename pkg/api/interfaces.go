// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/ssargent/plyfile/pkg/archive"
)

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves the archive until ctx is cancelled
	StartServer(ctx context.Context, store DocumentStore, config ServerConfig, opts ...ServerOption) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}

// ArchiveStore is a DocumentStore owning the resources behind it
type ArchiveStore interface {
	DocumentStore

	// Close releases the archive
	Close() error
}

// ArchiveFactory opens document archives
type ArchiveFactory interface {
	// OpenArchive opens or creates the archive described by opts
	OpenArchive(opts archive.Options) (ArchiveStore, error)
}
