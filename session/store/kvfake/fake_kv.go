package kvfake

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/eventry/eventry-client-go/session/store"
)

var _ store.KV = (*FakeKV)(nil)

// FakeKV is an in-memory KV for tests. GetErr/PutErr/DeleteErr/KeysErr
// inject failures into the corresponding operation.
type FakeKV struct {
	GetErr    error
	PutErr    error
	DeleteErr error
	KeysErr   error

	lock sync.RWMutex
	data map[string]string
}

func NewFakeKV() *FakeKV {
	return &FakeKV{data: make(map[string]string)}
}

func (f *FakeKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.GetErr != nil {
		return "", false, f.GetErr
	}

	f.lock.RLock()
	defer f.lock.RUnlock()

	value, ok := f.data[key]
	return value, ok, nil
}

func (f *FakeKV) PutAll(ctx context.Context, entries map[string]string) error {
	if f.PutErr != nil {
		return f.PutErr
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	for key, value := range entries {
		f.data[key] = value
	}
	return nil
}

func (f *FakeKV) Delete(ctx context.Context, keys ...string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *FakeKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	if f.KeysErr != nil {
		return nil, f.KeysErr
	}

	f.lock.RLock()
	defer f.lock.RUnlock()

	keys := make([]string, 0, len(f.data))
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Seed stores a value directly, bypassing error injection.
func (f *FakeKV) Seed(key, value string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.data[key] = value
}

// Snapshot returns a copy of the stored data for before/after comparisons.
func (f *FakeKV) Snapshot() map[string]string {
	f.lock.RLock()
	defer f.lock.RUnlock()

	snapshot := make(map[string]string, len(f.data))
	for key, value := range f.data {
		snapshot[key] = value
	}
	return snapshot
}
