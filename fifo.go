// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package codel

// Store is ordered storage underneath a Queue.  The Queue only sees the
// front Item and the aggregate occupancy.  Capacity enforcement is the
// Queue's job, but a Store may still refuse a push, which the Queue treats
// the same as an overlimit rejection.
type Store interface {
	// Push adds an Item to the back, or returns false if it can't.
	Push(Item) bool

	// Pop removes and returns the Item at the front.
	Pop() (Item, bool)

	// Peek returns the Item at the front without removing it.
	Peek() (Item, bool)

	// Len returns the occupancy in Items.
	Len() int

	// Bytes returns the occupancy in bytes.
	Bytes() Bytes
}

// FIFO is the default Store, a slice-backed queue with byte accounting.
type FIFO struct {
	items []Item
	bytes Bytes
}

// NewFIFO returns a new FIFO.
func NewFIFO() *FIFO {
	return &FIFO{
		make([]Item, 0), // items
		0,               // bytes
	}
}

// Push implements Store.
func (f *FIFO) Push(item Item) bool {
	f.items = append(f.items, item)
	f.bytes += item.Size()
	return true
}

// Pop implements Store.
func (f *FIFO) Pop() (item Item, ok bool) {
	if len(f.items) == 0 {
		return
	}
	item, f.items = f.items[0], f.items[1:]
	f.bytes -= item.Size()
	ok = true
	return
}

// Peek implements Store.
func (f *FIFO) Peek() (item Item, ok bool) {
	if len(f.items) == 0 {
		return
	}
	item = f.items[0]
	ok = true
	return
}

// Len implements Store.
func (f *FIFO) Len() int {
	return len(f.items)
}

// Bytes implements Store.
func (f *FIFO) Bytes() Bytes {
	return f.bytes
}
