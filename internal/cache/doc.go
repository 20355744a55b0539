// Package cache provides a small generic LRU cache.
//
//	c := cache.New[uint64, []uint32](32)
//	spirv := c.GetOrCreate(key, compile)
//
// Cache is safe for concurrent use and must not be copied.
package cache
