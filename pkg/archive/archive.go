// Package archive keeps polygon files in a pebble database. Every document
// is stored zstd-compressed under a KSUID, next to a JSON entry describing it.
package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/plyfile/pkg/ply"
)

// Error is a sentinel archive error
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrNotFound  = &Error{"document not found"}
	ErrInvalidID = &Error{"invalid document id"}
	ErrClosed    = &Error{"archive is closed"}
)

const (
	docPrefix  = "doc/"
	metaPrefix = "meta/"
)

// Options configures an archive
type Options struct {
	Dir              string
	CompressionLevel int
	Logger           *slog.Logger
}

// Entry describes one archived document
type Entry struct {
	ID      string      `json:"id"`
	Created time.Time   `json:"created"`
	Size    int         `json:"size"`
	Stored  int         `json:"stored"`
	Summary ply.Summary `json:"summary"`
}

// Stats aggregates every entry of the archive
type Stats struct {
	Documents   int   `json:"documents"`
	Bytes       int64 `json:"bytes"`
	StoredBytes int64 `json:"stored_bytes"`
	Rows        int64 `json:"rows"`
}

// Store is a document archive. It is safe for concurrent use.
type Store struct {
	db     *pebble.DB
	enc    *zstd.Encoder
	dec    *zstd.Decoder
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// Open opens or creates the archive in opts.Dir
func Open(opts Options) (*Store, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("archive directory is required")
	}
	if opts.CompressionLevel == 0 {
		opts.CompressionLevel = 3
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(opts.CompressionLevel)))
	if err != nil {
		return nil, fmt.Errorf("failed to create compressor: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("failed to create decompressor: %w", err)
	}
	db, err := pebble.Open(opts.Dir, &pebble.Options{})
	if err != nil {
		enc.Close()
		dec.Close()
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	logger.Debug("archive opened", "dir", opts.Dir, "compression_level", opts.CompressionLevel)
	return &Store{db: db, enc: enc, dec: dec, logger: logger}, nil
}

func docKey(id ksuid.KSUID) []byte {
	return append([]byte(docPrefix), id.Bytes()...)
}

func metaKey(id ksuid.KSUID) []byte {
	return append([]byte(metaPrefix), id.Bytes()...)
}

func parseID(id string) (ksuid.KSUID, error) {
	k, err := ksuid.Parse(id)
	if err != nil {
		return ksuid.Nil, ErrInvalidID
	}
	return k, nil
}

// Put stores f in its own encoding and returns the new entry
func (s *Store) Put(f *ply.File) (Entry, error) {
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		return Entry{}, fmt.Errorf("failed to encode document: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Entry{}, ErrClosed
	}

	compressed := s.enc.EncodeAll(buf.Bytes(), nil)
	id := ksuid.New()
	entry := Entry{
		ID:      id.String(),
		Created: id.Time().UTC(),
		Size:    buf.Len(),
		Stored:  len(compressed),
		Summary: ply.Describe(f),
	}
	meta, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to marshal entry: %w", err)
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(docKey(id), compressed, nil); err != nil {
		return Entry{}, fmt.Errorf("failed to stage document: %w", err)
	}
	if err := batch.Set(metaKey(id), meta, nil); err != nil {
		return Entry{}, fmt.Errorf("failed to stage entry: %w", err)
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return Entry{}, fmt.Errorf("failed to store document: %w", err)
	}

	s.logger.Debug("document archived", "id", entry.ID, "size", entry.Size, "stored", entry.Stored)
	return entry, nil
}

// get returns a copy of the value at key
func (s *Store) get(key []byte) ([]byte, error) {
	data, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), data...), nil
}

// Raw returns the encoded document exactly as it was stored
func (s *Store) Raw(id string) ([]byte, error) {
	k, err := parseID(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	compressed, err := s.get(docKey(k))
	if err != nil {
		return nil, err
	}
	data, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress document %s: %w", id, err)
	}
	return data, nil
}

// Get decodes the document stored under id
func (s *Store) Get(id string) (*ply.File, error) {
	data, err := s.Raw(id)
	if err != nil {
		return nil, err
	}
	f, err := ply.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	f.SetLogger(s.logger)
	return f, nil
}

// Info returns the entry of the document stored under id
func (s *Store) Info(id string) (*Entry, error) {
	k, err := parseID(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.info(k)
}

func (s *Store) info(k ksuid.KSUID) (*Entry, error) {
	data, err := s.get(metaKey(k))
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry %s: %w", k, err)
	}
	return &entry, nil
}

// List returns every entry, oldest first
func (s *Store) List() ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(metaPrefix),
		UpperBound: prefixEnd(metaPrefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer iter.Close()

	entries := []Entry{}
	for iter.First(); iter.Valid(); iter.Next() {
		var entry Entry
		if err := json.Unmarshal(iter.Value(), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return entries, nil
}

// prefixEnd returns the smallest key greater than every key starting with prefix
func prefixEnd(prefix string) []byte {
	end := []byte(prefix)
	end[len(end)-1]++
	return end
}

// Delete removes the document stored under id
func (s *Store) Delete(id string) error {
	k, err := parseID(id)
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if _, err := s.info(k); err != nil {
		return err
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(docKey(k), nil); err != nil {
		return fmt.Errorf("failed to stage delete: %w", err)
	}
	if err := batch.Delete(metaKey(k), nil); err != nil {
		return fmt.Errorf("failed to stage delete: %w", err)
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	s.logger.Debug("document deleted", "id", id)
	return nil
}

// Stats sums the entries of the archive
func (s *Store) Stats() (Stats, error) {
	entries, err := s.List()
	if err != nil {
		return Stats{}, err
	}
	var st Stats
	for _, e := range entries {
		st.Documents++
		st.Bytes += int64(e.Size)
		st.StoredBytes += int64(e.Stored)
		st.Rows += int64(e.Summary.Rows())
	}
	return st, nil
}

// Close flushes and closes the database. Further calls fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.dec.Close()
	if err := s.enc.Close(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}
