// Package cache provides a small generic LRU cache for resources that are
// expensive to create, such as font faces.
//
//	c := cache.New[float64, font.Face](8, func(_ float64, f font.Face) { f.Close() })
//	face, err := c.GetOrCreate(14, newFace)
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
