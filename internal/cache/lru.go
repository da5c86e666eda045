package cache

import "iter"

// lruNode is a node in the intrusive recency list.
type lruNode[K comparable] struct {
	key  K
	prev *lruNode[K]
	next *lruNode[K]
}

// LRU orders keys by last use. The head is the most recently used key,
// the tail the least recently used one. All operations are O(1) except
// iteration.
//
// LRU is not safe for concurrent use.
type LRU[K comparable] struct {
	nodes map[K]*lruNode[K]
	head  *lruNode[K]
	tail  *lruNode[K]
}

// NewLRU creates an empty list.
func NewLRU[K comparable]() *LRU[K] {
	return &LRU[K]{nodes: make(map[K]*lruNode[K])}
}

// Len returns the number of tracked keys.
func (l *LRU[K]) Len() int { return len(l.nodes) }

// Contains reports whether key is tracked.
func (l *LRU[K]) Contains(key K) bool {
	_, ok := l.nodes[key]
	return ok
}

// Touch marks key as most recently used, adding it if absent.
func (l *LRU[K]) Touch(key K) {
	if n, ok := l.nodes[key]; ok {
		if n == l.head {
			return
		}
		l.unlink(n)
		l.pushFront(n)
		return
	}
	n := &lruNode[K]{key: key}
	l.nodes[key] = n
	l.pushFront(n)
}

// Remove stops tracking key. Unknown keys are ignored.
func (l *LRU[K]) Remove(key K) {
	n, ok := l.nodes[key]
	if !ok {
		return
	}
	l.unlink(n)
	delete(l.nodes, key)
}

// Oldest returns the least recently used key.
func (l *LRU[K]) Oldest() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}
	return l.tail.key, true
}

// FromOldest yields keys from least to most recently used. The list must
// not be modified during iteration.
func (l *LRU[K]) FromOldest() iter.Seq[K] {
	return func(yield func(K) bool) {
		for n := l.tail; n != nil; n = n.prev {
			if !yield(n.key) {
				return
			}
		}
	}
}

// Clear removes all keys.
func (l *LRU[K]) Clear() {
	clear(l.nodes)
	l.head, l.tail = nil, nil
}

func (l *LRU[K]) pushFront(n *lruNode[K]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

func (l *LRU[K]) unlink(n *lruNode[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
