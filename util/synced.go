// Package util holds small helpers shared by the Pano packages.
package util

import "sync/atomic"

// SafeCounter is an int counter safe to use concurrently.
type SafeCounter struct {
	value atomic.Int64
}

// NewSafeCounter creates a counter starting at initialValue.
func NewSafeCounter(initialValue int) *SafeCounter {
	c := &SafeCounter{}
	c.value.Store(int64(initialValue))
	return c
}

// Increment increments the counter's value and returns the new value.
func (c *SafeCounter) Increment() int {
	return int(c.value.Add(1))
}

// Value returns the current value of the counter.
func (c *SafeCounter) Value() int {
	return int(c.value.Load())
}

// SafeFlag is a bool safe to use concurrently.
type SafeFlag struct {
	value atomic.Bool
}

// Set sets the flag and returns the previous value.
func (f *SafeFlag) Set(v bool) bool {
	return f.value.Swap(v)
}

// Value returns the current value of the flag.
func (f *SafeFlag) Value() bool {
	return f.value.Load()
}
