package api

import (
	"github.com/ssargent/plyfile/pkg/archive"
	"github.com/ssargent/plyfile/pkg/ply"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port         int
	Bind         string
	APIKey       string
	MaxBodyBytes int64 // Largest accepted upload, 0 means DefaultMaxBodyBytes
}

// DefaultMaxBodyBytes limits document uploads
const DefaultMaxBodyBytes = 256 << 20

// DocumentStore is the archive surface used by the handlers
type DocumentStore interface {
	Put(f *ply.File) (archive.Entry, error)
	Get(id string) (*ply.File, error)
	Raw(id string) ([]byte, error)
	Info(id string) (*archive.Entry, error)
	List() ([]archive.Entry, error)
	Delete(id string) error
	Stats() (archive.Stats, error)
}

var _ DocumentStore = (*archive.Store)(nil)
