// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package codel_test

import (
	"testing"

	"github.com/heistp/codel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIFO(t *testing.T) {
	f := codel.NewFIFO()
	assert.Zero(t, f.Len())
	assert.Zero(t, f.Bytes())
	_, ok := f.Pop()
	assert.False(t, ok)
	_, ok = f.Peek()
	assert.False(t, ok)

	a := newItem(100, codel.NotECT)
	b := newItem(200, codel.NotECT)
	require.True(t, f.Push(a))
	require.True(t, f.Push(b))
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, codel.Bytes(300), f.Bytes())

	p, ok := f.Peek()
	require.True(t, ok)
	assert.Same(t, a, p)
	assert.Equal(t, 2, f.Len())

	p, ok = f.Pop()
	require.True(t, ok)
	assert.Same(t, a, p)
	assert.Equal(t, 1, f.Len())
	assert.Equal(t, codel.Bytes(200), f.Bytes())

	p, ok = f.Pop()
	require.True(t, ok)
	assert.Same(t, b, p)
	assert.Zero(t, f.Len())
	assert.Zero(t, f.Bytes())
}
