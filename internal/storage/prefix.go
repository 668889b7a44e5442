package storage

// PrefixDB wraps a DB and prepends a fixed namespace to all keys, so several
// record kinds can share one underlying store.
type PrefixDB struct {
	inner  DB
	prefix []byte
}

// NewPrefixDB creates a new PrefixDB wrapping inner with the given prefix.
func NewPrefixDB(inner DB, prefix []byte) *PrefixDB {
	return &PrefixDB{inner: inner, prefix: cloneBytes(prefix)}
}

// Prefix returns a copy of the namespace prefix.
func (p *PrefixDB) Prefix() []byte {
	return cloneBytes(p.prefix)
}

func withPrefix(prefix, key []byte) []byte {
	out := make([]byte, len(prefix)+len(key))
	copy(out, prefix)
	copy(out[len(prefix):], key)
	return out
}

// Get retrieves a value by key.
func (p *PrefixDB) Get(key []byte) ([]byte, error) {
	return p.inner.Get(withPrefix(p.prefix, key))
}

// Put stores a key-value pair.
func (p *PrefixDB) Put(key, value []byte) error {
	return p.inner.Put(withPrefix(p.prefix, key), value)
}

// Delete removes a key.
func (p *PrefixDB) Delete(key []byte) error {
	return p.inner.Delete(withPrefix(p.prefix, key))
}

// Has checks if a key exists.
func (p *PrefixDB) Has(key []byte) (bool, error) {
	return p.inner.Has(withPrefix(p.prefix, key))
}

// ForEach iterates over the keys in this namespace that start with prefix.
// Keys passed to fn have the namespace stripped.
func (p *PrefixDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	n := len(p.prefix)
	return p.inner.ForEach(withPrefix(p.prefix, prefix), func(key, value []byte) error {
		return fn(key[n:], value)
	})
}

// DeleteAll removes every key in this namespace.
func (p *PrefixDB) DeleteAll() error {
	var keys [][]byte
	err := p.inner.ForEach(p.prefix, func(key, _ []byte) error {
		keys = append(keys, cloneBytes(key))
		return nil
	})
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := p.inner.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op. The inner DB owns the lifecycle.
func (p *PrefixDB) Close() error {
	return nil
}

// NewBatch returns a batch whose keys are namespaced. It is atomic when the
// inner DB is a Batcher and applied write by write otherwise.
func (p *PrefixDB) NewBatch() Batch {
	if b, ok := p.inner.(Batcher); ok {
		return &prefixBatch{inner: b.NewBatch(), prefix: p.prefix}
	}
	return &sequentialBatch{db: p.inner, prefix: p.prefix}
}

// NewBatch returns a Batch for db, falling back to sequential writes when db
// cannot batch.
func NewBatch(db DB) Batch {
	if b, ok := db.(Batcher); ok {
		return b.NewBatch()
	}
	return &sequentialBatch{db: db}
}

type prefixBatch struct {
	inner  Batch
	prefix []byte
}

func (pb *prefixBatch) Put(key, value []byte) error {
	return pb.inner.Put(withPrefix(pb.prefix, key), value)
}

func (pb *prefixBatch) Delete(key []byte) error {
	return pb.inner.Delete(withPrefix(pb.prefix, key))
}

func (pb *prefixBatch) Commit() error {
	return pb.inner.Commit()
}

// sequentialBatch buffers writes and applies them one by one on Commit.
type sequentialBatch struct {
	db     DB
	prefix []byte
	ops    []batchOp
}

func (sb *sequentialBatch) Put(key, value []byte) error {
	sb.ops = append(sb.ops, batchOp{key: withPrefix(sb.prefix, key), value: cloneBytes(value)})
	return nil
}

func (sb *sequentialBatch) Delete(key []byte) error {
	sb.ops = append(sb.ops, batchOp{key: withPrefix(sb.prefix, key)})
	return nil
}

func (sb *sequentialBatch) Commit() error {
	for _, op := range sb.ops {
		var err error
		if op.value == nil {
			err = sb.db.Delete(op.key)
		} else {
			err = sb.db.Put(op.key, op.value)
		}
		if err != nil {
			return err
		}
	}
	sb.ops = nil
	return nil
}
