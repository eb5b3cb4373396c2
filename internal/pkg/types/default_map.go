package types

// DefaultMap is a generic map wrapper that materializes missing entries with
// a user-supplied default constructor, removing the need for existence checks
// at every call site.
type DefaultMap[K comparable, V any] struct {
	data        map[K]V
	defaultFunc func() V
}

// NewDefaultMap creates an empty DefaultMap whose missing keys resolve to the
// value produced by defaultFunc.
func NewDefaultMap[K comparable, V any](defaultFunc func() V) DefaultMap[K, V] {
	return DefaultMap[K, V]{
		data:        make(map[K]V),
		defaultFunc: defaultFunc,
	}
}

// Get retrieves the value for key. If the key is absent, the default value is
// generated, stored, and returned.
func (d *DefaultMap[K, V]) Get(key K) V {
	val, ok := d.data[key]
	if ok {
		return val
	}

	val = d.defaultFunc()
	d.data[key] = val
	return val
}

// Set assigns val to key, replacing any existing entry.
func (d *DefaultMap[K, V]) Set(key K, val V) {
	d.data[key] = val
}

// Delete removes the entry for key, if present.
func (d *DefaultMap[K, V]) Delete(key K) {
	delete(d.data, key)
}

// ToMap exposes the underlying map for iteration or bulk operations.
func (d *DefaultMap[K, V]) ToMap() map[K]V {
	return d.data
}
