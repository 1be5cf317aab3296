package cache

import (
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
)

// CompressedCache stores values zstd-compressed in a MemoryCache, so the
// capacity bounds compressed bytes. Speech documents are repetitive JSON and
// shrink well.
type CompressedCache struct {
	mem     *MemoryCache
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCompressedCache creates a compressed cache holding at most capacity
// compressed bytes.
func NewCompressedCache(capacity int64) (*CompressedCache, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &CompressedCache{
		mem:     NewMemoryCache(capacity),
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Get returns the decompressed value for key. Entries that fail to
// decompress are dropped and reported as misses.
func (c *CompressedCache) Get(key string) ([]byte, bool) {
	data, ok := c.mem.Get(key)
	if !ok {
		return nil, false
	}
	value, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		c.mem.Delete(key)
		return nil, false
	}
	return value, true
}

// Put compresses and stores value.
func (c *CompressedCache) Put(key string, value []byte) error {
	return c.mem.Put(key, c.encoder.EncodeAll(value, nil))
}

// Delete removes key.
func (c *CompressedCache) Delete(key string) { c.mem.Delete(key) }

// Purge removes every entry.
func (c *CompressedCache) Purge() { c.mem.Purge() }

// Prune removes entries older than maxAge.
func (c *CompressedCache) Prune(maxAge time.Duration) int { return c.mem.Prune(maxAge) }

// Stats returns statistics about the compressed store.
func (c *CompressedCache) Stats() Stats { return c.mem.Stats() }

// Close releases the decoder.
func (c *CompressedCache) Close() {
	c.decoder.Close()
}
