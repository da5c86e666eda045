// Package cache provides recency tracking for resources evicted under
// pressure.
package cache
