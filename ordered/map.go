// Package ordered provides an ordered key/value map backed by a B-tree with
// cache-friendly nodes.
//
// Keys and values inside a node live in flat arrays next to a small size
// counter, and all in-node searches are linear scans. With the small node
// capacity used here that beats binary search on modern hardware, because a
// whole node fits in a few cache lines.
package ordered

import "golang.org/x/exp/constraints"

// The maximum node degree is odd, so a full node holds an even number of
// keys. Splitting it promotes the key at splitMid and leaves splitMid keys
// in the left half and splitRight keys in the right half. Non-root nodes
// hold at least threshold-1 keys.
const (
	degree     = 65
	capacity   = degree - 1
	splitRight = capacity / 2
	splitMid   = splitRight - 1
	threshold  = degree / 2
)

// QueryResult reports the outcome of a predecessor, successor or find query.
// Key and Value are only meaningful if Exists is true.
type QueryResult[K constraints.Ordered, V any] struct {
	Exists bool
	Key    K
	Value  V
}

// Map is an ordered map from K to V. The zero value is an empty map ready
// for use. In addition to insert and erase it supports predecessor and
// successor queries for arbitrary keys.
//
// A Map must not be modified concurrently with any other access to it.
type Map[K constraints.Ordered, V any] struct {
	root *node[K, V]
	size int
}

type node[K constraints.Ordered, V any] struct {
	keys     [capacity]K
	values   [capacity]V
	n        int
	children []*node[K, V]
}

func (o *node[K, V]) leaf() bool { return o.children == nil }
func (o *node[K, V]) full() bool { return o.n == capacity }

// pred returns the position of the largest key <= x in the node.
func (o *node[K, V]) pred(x K) (pos int, ok bool) {
	if o.n == 0 || x < o.keys[0] {
		return 0, false
	}
	if x >= o.keys[o.n-1] {
		return o.n - 1, true
	}
	i := 1
	for o.keys[i] <= x {
		i++
	}
	return i - 1, true
}

// succ returns the position of the smallest key >= x in the node.
func (o *node[K, V]) succ(x K) (pos int, ok bool) {
	if o.n == 0 || x > o.keys[o.n-1] {
		return 0, false
	}
	if x <= o.keys[0] {
		return 0, true
	}
	i := 1
	for o.keys[i] < x {
		i++
	}
	return i, true
}

// insertKV inserts into the sorted key array. The node must not be full.
func (o *node[K, V]) insertKV(k K, v V) int {
	i := 0
	for i < o.n && o.keys[i] < k {
		i++
	}
	copy(o.keys[i+1:o.n+1], o.keys[i:o.n])
	copy(o.values[i+1:o.n+1], o.values[i:o.n])
	o.keys[i] = k
	o.values[i] = v
	o.n++
	return i
}

func (o *node[K, V]) eraseKV(k K) (v V, ok bool) {
	for i := 0; i < o.n; i++ {
		if o.keys[i] == k {
			v = o.values[i]
			copy(o.keys[i:o.n-1], o.keys[i+1:o.n])
			copy(o.values[i:o.n-1], o.values[i+1:o.n])
			o.n--
			var zero V
			o.values[o.n] = zero
			return v, true
		}
	}
	return v, false
}

func (o *node[K, V]) insertChild(i int, c *node[K, V]) {
	if o.children == nil {
		o.children = make([]*node[K, V], 0, degree)
	}
	o.children = append(o.children, nil)
	copy(o.children[i+1:], o.children[i:])
	o.children[i] = c
}

func (o *node[K, V]) eraseChild(i int) {
	copy(o.children[i:], o.children[i+1:])
	o.children[len(o.children)-1] = nil
	o.children = o.children[:len(o.children)-1]
	if len(o.children) == 0 {
		o.children = nil
	}
}

// splitChild splits the full child i, promoting its median key into o.
// o itself must not be full.
func (o *node[K, V]) splitChild(i int) {
	y := o.children[i]
	z := &node[K, V]{}

	mk, mv := y.keys[splitMid], y.values[splitMid]

	copy(z.keys[:splitRight], y.keys[splitRight:capacity])
	copy(z.values[:splitRight], y.values[splitRight:capacity])
	z.n = splitRight
	y.n = splitMid

	if !y.leaf() {
		z.children = make([]*node[K, V], splitRight+1, degree)
		copy(z.children, y.children[splitMid+1:])
		for j := splitMid + 1; j < len(y.children); j++ {
			y.children[j] = nil
		}
		y.children = y.children[:splitMid+1]
	}

	o.insertKV(mk, mv)
	o.insertChild(i+1, z)
}

func (o *node[K, V]) insert(k K, v V) {
	if o.leaf() {
		o.insertKV(k, v)
		return
	}
	i := 0
	if pos, ok := o.pred(k); ok {
		i = pos + 1
	}
	if o.children[i].full() {
		o.splitChild(i)
		// the promoted median may shift the child to descend into
		if k > o.keys[i] {
			i++
		}
	}
	o.children[i].insert(k, v)
}

func (o *node[K, V]) erase(k K) bool {
	if o.leaf() {
		_, ok := o.eraseKV(k)
		return ok
	}

	i := 0
	found := false
	if pos, ok := o.pred(k); ok {
		i = pos + 1
		found = o.keys[pos] == k
	}

	if found {
		// the key lives in this internal node
		y, z := o.children[i-1], o.children[i]
		switch {
		case y.n >= threshold:
			// replace by the in-order predecessor from the left subtree
			c := y
			for !c.leaf() {
				c = c.children[len(c.children)-1]
			}
			pk, pv := c.keys[c.n-1], c.values[c.n-1]
			o.eraseKV(k)
			o.insertKV(pk, pv)
			return y.erase(pk)
		case z.n >= threshold:
			// replace by the in-order successor from the right subtree
			c := z
			for !c.leaf() {
				c = c.children[0]
			}
			sk, sv := c.keys[0], c.values[0]
			o.eraseKV(k)
			o.insertKV(sk, sv)
			return z.erase(sk)
		default:
			// both subtrees are at the threshold: merge them around k
			v, _ := o.eraseKV(k)
			y.insertKV(k, v)
			for j := 0; j < z.n; j++ {
				y.insertKV(z.keys[j], z.values[j])
			}
			if !z.leaf() {
				y.children = append(y.children, z.children...)
			}
			o.eraseChild(i)
			return y.erase(k)
		}
	}

	// rebalance the child to descend into so that it can lose a key
	c := o.children[i]
	if c.n < threshold {
		var left, right *node[K, V]
		if i > 0 {
			left = o.children[i-1]
		}
		if i < len(o.children)-1 {
			right = o.children[i+1]
		}
		switch {
		case left != nil && left.n >= threshold:
			// rotate through the splitter from the left sibling
			sk := o.keys[i-1]
			sv, _ := o.eraseKV(sk)
			c.insertKV(sk, sv)
			lk := left.keys[left.n-1]
			lv, _ := left.eraseKV(lk)
			o.insertKV(lk, lv)
			if !left.leaf() {
				m := left.children[len(left.children)-1]
				left.eraseChild(len(left.children) - 1)
				c.insertChild(0, m)
			}
		case right != nil && right.n >= threshold:
			// rotate through the splitter from the right sibling
			sk := o.keys[i]
			sv, _ := o.eraseKV(sk)
			c.insertKV(sk, sv)
			rk := right.keys[0]
			rv, _ := right.eraseKV(rk)
			o.insertKV(rk, rv)
			if !right.leaf() {
				m := right.children[0]
				right.eraseChild(0)
				c.insertChild(len(c.children), m)
			}
		case right != nil:
			// merge the child with its right sibling
			sk := o.keys[i]
			sv, _ := o.eraseKV(sk)
			c.insertKV(sk, sv)
			for j := 0; j < right.n; j++ {
				c.insertKV(right.keys[j], right.values[j])
			}
			if !right.leaf() {
				c.children = append(c.children, right.children...)
			}
			o.eraseChild(i + 1)
		default:
			// merge the child with its left sibling
			sk := o.keys[i-1]
			sv, _ := o.eraseKV(sk)
			c.insertKV(sk, sv)
			for j := 0; j < left.n; j++ {
				c.insertKV(left.keys[j], left.values[j])
			}
			if !left.leaf() {
				cc := make([]*node[K, V], 0, degree)
				cc = append(cc, left.children...)
				cc = append(cc, c.children...)
				c.children = cc
			}
			o.eraseChild(i - 1)
		}
	}
	return c.erase(k)
}

// Insert inserts key k with value v. Inserting a key that is already
// contained corrupts the tree; callers must guarantee uniqueness.
func (m *Map[K, V]) Insert(k K, v V) {
	if m.root == nil {
		m.root = &node[K, V]{}
	}
	if m.root.full() {
		r := &node[K, V]{}
		r.insertChild(0, m.root)
		m.root = r
		r.splitChild(0)
	}
	m.root.insert(k, v)
	m.size++
}

// Erase removes key k and reports whether it was contained.
func (m *Map[K, V]) Erase(k K) bool {
	if m.root == nil || m.size == 0 {
		return false
	}
	ok := m.root.erase(k)
	if ok {
		m.size--
	}
	if m.root.n == 0 && len(m.root.children) > 0 {
		m.root = m.root.children[0]
	}
	return ok
}

// Predecessor returns the largest entry with key <= x. A contained key is
// its own predecessor.
func (m *Map[K, V]) Predecessor(x K) QueryResult[K, V] {
	var r QueryResult[K, V]
	o := m.root
	if o == nil {
		return r
	}
	pos, ok := o.pred(x)
	for !o.leaf() {
		if ok {
			r.Exists, r.Key, r.Value = true, o.keys[pos], o.values[pos]
			if r.Key == x {
				return r
			}
		}
		i := 0
		if ok {
			i = pos + 1
		}
		o = o.children[i]
		pos, ok = o.pred(x)
	}
	if ok {
		r.Exists, r.Key, r.Value = true, o.keys[pos], o.values[pos]
	}
	return r
}

// Successor returns the smallest entry with key >= x. A contained key is
// its own successor.
func (m *Map[K, V]) Successor(x K) QueryResult[K, V] {
	var r QueryResult[K, V]
	o := m.root
	if o == nil {
		return r
	}
	pos, ok := o.succ(x)
	for !o.leaf() {
		if ok {
			r.Exists, r.Key, r.Value = true, o.keys[pos], o.values[pos]
			if r.Key == x {
				return r
			}
		}
		i := len(o.children) - 1
		if ok {
			i = pos
		}
		o = o.children[i]
		pos, ok = o.succ(x)
	}
	if ok {
		r.Exists, r.Key, r.Value = true, o.keys[pos], o.values[pos]
	}
	return r
}

// Find returns the entry with key x, if contained.
func (m *Map[K, V]) Find(x K) QueryResult[K, V] {
	if m.size == 0 {
		return QueryResult[K, V]{}
	}
	r := m.Predecessor(x)
	if r.Exists && r.Key == x {
		return r
	}
	return QueryResult[K, V]{}
}

// Contains reports whether key x is contained.
func (m *Map[K, V]) Contains(x K) bool {
	return m.Find(x).Exists
}

// Min returns the smallest entry, if any.
func (m *Map[K, V]) Min() QueryResult[K, V] {
	if m.size == 0 {
		return QueryResult[K, V]{}
	}
	o := m.root
	for !o.leaf() {
		o = o.children[0]
	}
	return QueryResult[K, V]{Exists: true, Key: o.keys[0], Value: o.values[0]}
}

// Max returns the largest entry, if any.
func (m *Map[K, V]) Max() QueryResult[K, V] {
	if m.size == 0 {
		return QueryResult[K, V]{}
	}
	o := m.root
	for !o.leaf() {
		o = o.children[len(o.children)-1]
	}
	return QueryResult[K, V]{Exists: true, Key: o.keys[o.n-1], Value: o.values[o.n-1]}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return m.size }

// Clear removes all entries.
func (m *Map[K, V]) Clear() {
	m.root = nil
	m.size = 0
}
