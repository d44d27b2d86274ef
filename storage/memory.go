package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ruteri/celia-media/interfaces"
)

type memoryObject struct {
	contentType string
	data        []byte
}

// MemoryObjectStore is a programmable in-memory interfaces.ObjectStore.
// It records how many times each capability was called, can be told to fail
// any of them, and tracks whether the bodies it handed out were closed.
type MemoryObjectStore struct {
	mu      sync.RWMutex
	bucket  string
	baseURL string
	objects map[string]memoryObject

	// HeadErr, PresignErr and GetErr, when set, are returned by the
	// corresponding method instead of consulting the stored objects.
	HeadErr    error
	PresignErr error
	GetErr     error

	headCalls    atomic.Int64
	presignCalls atomic.Int64
	getCalls     atomic.Int64
	openBodies   atomic.Int64
}

// NewMemoryObjectStore creates an empty store for bucket. Presigned URLs are
// rooted at baseURL.
func NewMemoryObjectStore(bucket, baseURL string) *MemoryObjectStore {
	return &MemoryObjectStore{
		bucket:  bucket,
		baseURL: baseURL,
		objects: make(map[string]memoryObject),
	}
}

// PutObject seeds the store. An empty contentType simulates a backend that
// reports none.
func (m *MemoryObjectStore) PutObject(key, contentType string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{contentType: contentType, data: bytes.Clone(data)}
}

// Bucket returns the bucket name.
func (m *MemoryObjectStore) Bucket() string {
	return m.bucket
}

// HeadObject reports whether key was seeded.
func (m *MemoryObjectStore) HeadObject(ctx context.Context, key string) error {
	m.headCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.HeadErr != nil {
		return m.HeadErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[key]; !ok {
		return fmt.Errorf("%w: %s", interfaces.ErrObjectNotFound, key)
	}
	return nil
}

// PresignGetObject returns a deterministic fake signed URL. Like a real
// signer it does not check that key exists.
func (m *MemoryObjectStore) PresignGetObject(ctx context.Context, key string, expiry time.Duration) (string, error) {
	m.presignCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.PresignErr != nil {
		return "", m.PresignErr
	}

	q := url.Values{}
	q.Set("X-Amz-Expires", fmt.Sprintf("%d", int64(expiry/time.Second)))
	q.Set("X-Amz-Signature", "memory")
	return fmt.Sprintf("%s/%s/%s?%s", m.baseURL, m.bucket, key, q.Encode()), nil
}

// GetObject returns a stream over the seeded bytes.
func (m *MemoryObjectStore) GetObject(ctx context.Context, key string) (*interfaces.Object, error) {
	m.getCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.GetErr != nil {
		return nil, m.GetErr
	}

	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrObjectNotFound, key)
	}

	m.openBodies.Add(1)
	return &interfaces.Object{
		ContentType:   obj.contentType,
		ContentLength: int64(len(obj.data)),
		Body:          &memoryBody{Reader: bytes.NewReader(obj.data), open: &m.openBodies},
	}, nil
}

// HeadCalls returns the number of HeadObject calls.
func (m *MemoryObjectStore) HeadCalls() int64 { return m.headCalls.Load() }

// PresignCalls returns the number of PresignGetObject calls.
func (m *MemoryObjectStore) PresignCalls() int64 { return m.presignCalls.Load() }

// GetCalls returns the number of GetObject calls.
func (m *MemoryObjectStore) GetCalls() int64 { return m.getCalls.Load() }

// TotalCalls returns the number of backend calls of any kind.
func (m *MemoryObjectStore) TotalCalls() int64 {
	return m.HeadCalls() + m.PresignCalls() + m.GetCalls()
}

// OpenBodies returns how many bodies were handed out and not yet closed.
func (m *MemoryObjectStore) OpenBodies() int64 { return m.openBodies.Load() }

type memoryBody struct {
	*bytes.Reader
	open   *atomic.Int64
	closed atomic.Bool
}

func (b *memoryBody) Close() error {
	if b.closed.CompareAndSwap(false, true) {
		b.open.Add(-1)
	}
	return nil
}

// MemoryObjectStoreFactory hands out MemoryObjectStores keyed by bucket name,
// creating them on first use. It records the options each store was built with.
type MemoryObjectStoreFactory struct {
	mu      sync.Mutex
	BaseURL string
	stores  map[string]*MemoryObjectStore
	options map[string]interfaces.ObjectStoreOptions
}

// NewMemoryObjectStoreFactory creates a factory whose stores presign under baseURL.
func NewMemoryObjectStoreFactory(baseURL string) *MemoryObjectStoreFactory {
	return &MemoryObjectStoreFactory{
		BaseURL: baseURL,
		stores:  make(map[string]*MemoryObjectStore),
		options: make(map[string]interfaces.ObjectStoreOptions),
	}
}

// ObjectStoreFor implements interfaces.ObjectStoreFactory.
func (f *MemoryObjectStoreFactory) ObjectStoreFor(opts interfaces.ObjectStoreOptions) (interfaces.ObjectStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.options[opts.Bucket] = opts
	return f.storeLocked(opts.Bucket), nil
}

// Store returns the store for bucket, creating it if needed.
func (f *MemoryObjectStoreFactory) Store(bucket string) *MemoryObjectStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.storeLocked(bucket)
}

// Options returns the options the store for bucket was last requested with.
func (f *MemoryObjectStoreFactory) Options(bucket string) (interfaces.ObjectStoreOptions, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	opts, ok := f.options[bucket]
	return opts, ok
}

func (f *MemoryObjectStoreFactory) storeLocked(bucket string) *MemoryObjectStore {
	s, ok := f.stores[bucket]
	if !ok {
		s = NewMemoryObjectStore(bucket, f.BaseURL)
		f.stores[bucket] = s
	}
	return s
}

var _ io.ReadCloser = (*memoryBody)(nil)
