package storage

import (
	"context"
	"time"

	"github.com/ruteri/celia-media/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockObjectStore mocks the interfaces.ObjectStore interface
type MockObjectStore struct {
	mock.Mock
	BucketName string
}

// HeadObject mocks the HeadObject method
func (m *MockObjectStore) HeadObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// PresignGetObject mocks the PresignGetObject method
func (m *MockObjectStore) PresignGetObject(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

// GetObject mocks the GetObject method
func (m *MockObjectStore) GetObject(ctx context.Context, key string) (*interfaces.Object, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.Object), args.Error(1)
}

// Bucket returns the configured bucket name
func (m *MockObjectStore) Bucket() string {
	return m.BucketName
}

// MockObjectStoreFactory mocks the interfaces.ObjectStoreFactory interface
type MockObjectStoreFactory struct {
	mock.Mock
}

// ObjectStoreFor mocks the ObjectStoreFor method
func (m *MockObjectStoreFactory) ObjectStoreFor(opts interfaces.ObjectStoreOptions) (interfaces.ObjectStore, error) {
	args := m.Called(opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(interfaces.ObjectStore), args.Error(1)
}
