// Package api provides factory implementations for dependency injection
package api

import (
	"context"

	"github.com/ssargent/plyfile/pkg/archive"
)

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(ctx context.Context, store DocumentStore, config ServerConfig, opts ...ServerOption) error {
	return StartServer(ctx, store, config, opts...)
}

// DefaultArchiveFactory opens pebble backed archives
type DefaultArchiveFactory struct{}

// NewArchiveFactory creates a new archive factory
func NewArchiveFactory() ArchiveFactory {
	return &DefaultArchiveFactory{}
}

// OpenArchive opens or creates the archive described by opts
func (f *DefaultArchiveFactory) OpenArchive(opts archive.Options) (ArchiveStore, error) {
	store, err := archive.Open(opts)
	if err != nil {
		return nil, err
	}
	return store, nil
}
