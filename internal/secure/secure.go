// Package secure provides memory handling for secret material.
// Plaintext private keys and mnemonics live only inside Buffer values,
// which are mlocked where the platform allows it and explicitly zeroed
// on Destroy rather than waiting for garbage collection.
package secure

import (
	"runtime"
	"sync"
)

// Buffer is a wrapper for sensitive byte slices that provides secure
// memory handling with mlock and explicit zeroing.
type Buffer struct {
	data   []byte
	locked bool
	mu     sync.Mutex
}

// NewBuffer creates a new Buffer with the given size.
// The memory is locked if the system supports it.
func NewBuffer(size int) *Buffer {
	data := make([]byte, size)

	b := &Buffer{
		data:   data,
		locked: mlock(data),
	}

	// Ensure memory is cleared even if Destroy is never called.
	runtime.SetFinalizer(b, func(b *Buffer) {
		b.Destroy()
	})

	return b
}

// FromSlice creates a Buffer from an existing slice and zeroes the
// original. The caller's copy is unusable afterward.
func FromSlice(data []byte) *Buffer {
	b := NewBuffer(len(data))
	copy(b.data, data)
	Zero(data)
	return b
}

// CopyOfSlice creates a Buffer from an existing slice without touching
// the original.
func CopyOfSlice(data []byte) *Buffer {
	b := NewBuffer(len(data))
	copy(b.data, data)
	return b
}

// Bytes returns the underlying byte slice.
// Returns nil if the Buffer has been destroyed.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

// String returns the contents as a string. The returned string is an
// independent copy and is not zeroed with the buffer; use only for
// values that must cross a string-typed API.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.data)
}

// IsLocked returns whether the memory is mlocked.
func (b *Buffer) IsLocked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locked
}

// IsDestroyed returns whether Destroy has been called.
func (b *Buffer) IsDestroyed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data == nil
}

// Len returns the length of the data, or 0 after Destroy.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Destroy zeros the memory and unlocks it.
// Safe to call multiple times.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.data == nil {
		return
	}

	for i := range b.data {
		b.data[i] = 0
	}

	if b.locked {
		munlock(b.data)
		b.locked = false
	}

	b.data = nil

	runtime.SetFinalizer(b, nil)
}

// Zero zeros a byte slice in place. runtime.KeepAlive prevents the
// compiler from eliding the writes as dead stores.
func Zero(data []byte) {
	for i := range data {
		data[i] = 0
	}
	runtime.KeepAlive(data)
}
