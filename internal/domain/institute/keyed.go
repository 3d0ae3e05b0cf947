package institute

// keyedList is an insertion-ordered list of children that are unique by a
// natural key. Every container level holds one.
type keyedList[K comparable, C any] struct {
	items []C
	key   func(C) K
}

func newKeyedList[K comparable, C any](key func(C) K) keyedList[K, C] {
	return keyedList[K, C]{key: key}
}

// snapshot returns a copy of the items.
func (l *keyedList[K, C]) snapshot() []C {
	out := make([]C, len(l.items))
	copy(out, l.items)
	return out
}

func (l *keyedList[K, C]) len() int {
	return len(l.items)
}

func (l *keyedList[K, C]) index(k K) int {
	for i, item := range l.items {
		if l.key(item) == k {
			return i
		}
	}
	return -1
}

// add appends item unless its key is taken. It reports whether it appended.
func (l *keyedList[K, C]) add(item C) bool {
	if l.index(l.key(item)) >= 0 {
		return false
	}
	l.items = append(l.items, item)
	return true
}

// remove drops the child with key k. It reports whether one was found.
func (l *keyedList[K, C]) remove(k K) bool {
	i := l.index(k)
	if i < 0 {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return true
}

// rekey runs apply on the child with key from, unless another child already
// has key to. It reports whether the child was found and whether to was free.
func (l *keyedList[K, C]) rekey(from, to K, apply func(C)) (found, free bool) {
	i := l.index(from)
	if i < 0 {
		return false, false
	}
	if j := l.index(to); j >= 0 && j != i {
		return true, false
	}
	apply(l.items[i])
	return true, true
}

func (l *keyedList[K, C]) find(k K) (C, bool) {
	if i := l.index(k); i >= 0 {
		return l.items[i], true
	}
	var zero C
	return zero, false
}

// extend applies add to each item in order and stops at the first item that
// fails. Items added before the failure stay added.
func extend[C any](items []C, add func(C) error) error {
	for _, item := range items {
		if err := add(item); err != nil {
			return err
		}
	}
	return nil
}
