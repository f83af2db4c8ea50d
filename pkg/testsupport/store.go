package testsupport

import (
	"context"
	"sync"
	"time"
)

// StoreCall records one operation received by a MemoryStore.
type StoreCall struct {
	Op  string
	Key string
	TTL time.Duration
}

// MemoryStore is an in-process byte store that records every call. It
// satisfies the cache store contract including per-key expiry, and lets
// tests inject failures per operation.
type MemoryStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	calls   []StoreCall
	failOps map[string]error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:    make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
		failOps: make(map[string]error),
	}
}

func (s *MemoryStore) record(op, key string, ttl time.Duration) error {
	s.calls = append(s.calls, StoreCall{Op: op, Key: key, TTL: ttl})
	return s.failOps[op]
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("get", key, 0); err != nil {
		return nil, false, err
	}
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("set", key, 0); err != nil {
		return err
	}
	s.data[key] = append([]byte(nil), value...)
	delete(s.ttls, key)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("delete", key, 0); err != nil {
		return err
	}
	delete(s.data, key)
	delete(s.ttls, key)
	return nil
}

func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("expire", key, ttl); err != nil {
		return err
	}
	if _, ok := s.data[key]; ok {
		s.ttls[key] = ttl
	}
	return nil
}

// Put writes raw bytes without recording a call.
func (s *MemoryStore) Put(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
}

// Raw returns the bytes stored at key without recording a call.
func (s *MemoryStore) Raw(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return append([]byte(nil), v...), ok
}

// Has reports whether key is present.
func (s *MemoryStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

// TTL returns the lifetime last applied to key.
func (s *MemoryStore) TTL(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttls[key]
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// FailOn makes every subsequent call to op return err. A nil err clears it.
func (s *MemoryStore) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failOps, op)
		return
	}
	s.failOps[op] = err
}

// Calls returns a copy of the recorded calls.
func (s *MemoryStore) Calls() []StoreCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StoreCall(nil), s.calls...)
}

// Ops returns the recorded operation names in order.
func (s *MemoryStore) Ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := make([]string, len(s.calls))
	for i, c := range s.calls {
		ops[i] = c.Op
	}
	return ops
}

// CountOp returns how many times op was called.
func (s *MemoryStore) CountOp(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset clears recorded calls while keeping stored data.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// PlainStore wraps a MemoryStore without exposing Expire, standing in for
// backends that have no per-key expiry.
type PlainStore struct {
	Mem *MemoryStore
}

// NewPlainStore returns a store without expiry support.
func NewPlainStore() PlainStore {
	return PlainStore{Mem: NewMemoryStore()}
}

func (p PlainStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.Mem.Get(ctx, key)
}

func (p PlainStore) Set(ctx context.Context, key string, value []byte) error {
	return p.Mem.Set(ctx, key, value)
}

func (p PlainStore) Delete(ctx context.Context, key string) error {
	return p.Mem.Delete(ctx, key)
}
