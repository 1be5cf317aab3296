// Package cache provides an in-memory LRU cache for rendered speech
// documents, bounded by total size in bytes.
package cache
