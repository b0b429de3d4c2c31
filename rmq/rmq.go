// Package rmq provides constant-time range-minimum queries on static
// arrays.
//
// [BenderFarachColton] is the classic sparse-table scheme with O(n log n)
// words of space. [RMQ] reduces the space to O(n/B) table entries by
// splitting the array into blocks of size B, keeping the minimum and its
// position per block, and running the sparse table over the block minima
// only; queries resolve the partial blocks at both ends with a linear scan.
//
// Both structures are immutable after construction and safe for concurrent
// readers. The underlying array must not change while a structure is in use.
package rmq

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// BenderFarachColton answers range-minimum queries on a static array in
// constant time after O(n log n) construction. Ties break towards the
// leftmost position.
type BenderFarachColton[V constraints.Ordered] struct {
	data   []V
	levels [][]int32
}

// NewBenderFarachColton builds the sparse table over data. Level l stores,
// for each start position i, the argmin over a window of 2^(l+1) entries.
func NewBenderFarachColton[V constraints.Ordered](data []V) *BenderFarachColton[V] {
	t := &BenderFarachColton[V]{data: data}
	n := len(data)
	numLevels := bits.Len(uint(n)) - 1
	if numLevels < 1 {
		return t
	}
	t.levels = make([][]int32, numLevels)

	l0 := make([]int32, n-1)
	for i := 0; i < n-1; i++ {
		if data[i] <= data[i+1] {
			l0[i] = int32(i)
		} else {
			l0[i] = int32(i + 1)
		}
	}
	t.levels[0] = l0

	for level := 1; level < numLevels; level++ {
		size := n - (2<<level - 1)
		w := 1 << level
		prev := t.levels[level-1]
		lv := make([]int32, size)
		for i := 0; i < size; i++ {
			a, b := prev[i], prev[i+w]
			if data[a] <= data[b] {
				lv[i] = a
			} else {
				lv[i] = b
			}
		}
		t.levels[level] = lv
	}
	return t
}

// Query returns the position of the leftmost minimum in data[i..j], i <= j.
func (t *BenderFarachColton[V]) Query(i, j int) int {
	if i == j {
		return i
	}
	d := j - i + 1
	level := bits.Len(uint(d)) - 1
	w := 1 << level
	prev := t.levels[level-1]
	a, b := prev[i], prev[j+1-w]
	if t.data[a] <= t.data[b] {
		return int(a)
	}
	return int(b)
}

// blockSize is the block granularity of [RMQ]. Larger blocks mean smaller
// tables and longer scans at the interval ends.
const blockSize = 64

// RMQ answers range-minimum queries on a static array in constant time
// using a two-level block decomposition. Ties break towards the leftmost
// position.
type RMQ[V constraints.Ordered] struct {
	data        []V
	blockMin    []V
	blockMinPos []int32
	blocks      *BenderFarachColton[V]
}

// New builds the two-level structure over data in linear time.
func New[V constraints.Ordered](data []V) *RMQ[V] {
	q := &RMQ[V]{data: data}
	n := len(data)
	if n == 0 {
		return q
	}
	numBlocks := (n-1)/blockSize + 1
	q.blockMin = make([]V, numBlocks)
	q.blockMinPos = make([]int32, numBlocks)
	for b := 0; b < numBlocks; b++ {
		beg := b * blockSize
		end := min(beg+blockSize, n)
		pos := q.scan(beg, end)
		q.blockMin[b] = data[pos]
		q.blockMinPos[b] = int32(pos)
	}
	q.blocks = NewBenderFarachColton(q.blockMin)
	return q
}

// scan returns the position of the leftmost minimum in data[beg:end].
func (q *RMQ[V]) scan(beg, end int) int {
	pos := beg
	m := q.data[beg]
	for k := beg + 1; k < end; k++ {
		if q.data[k] < m {
			m = q.data[k]
			pos = k
		}
	}
	return pos
}

// Query returns the position of the leftmost minimum in data[i..j], i <= j.
func (q *RMQ[V]) Query(i, j int) int {
	if i == j {
		return i
	}

	// short intervals are faster to scan than to decompose
	if j-i <= 3*blockSize {
		return q.scan(i, j+1)
	}

	leftEnd := (i/blockSize + 1) * blockSize
	leftPos := q.scan(i, leftEnd)

	rightBeg := (j / blockSize) * blockSize
	rightPos := q.scan(rightBeg, j+1)

	// the interval spans at least one whole block in the middle
	leftBlock := i/blockSize + 1
	rightBlock := j/blockSize - 1
	midPos := int(q.blockMinPos[q.blocks.Query(leftBlock, rightBlock)])

	pos := leftPos
	m := q.data[pos]
	if q.data[midPos] < m {
		pos = midPos
		m = q.data[midPos]
	}
	if q.data[rightPos] < m {
		pos = rightPos
	}
	return pos
}
