package storage

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ruteri/celia-media/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3Object struct {
	contentType string
	data        string
}

// fakeS3 answers path-style HEAD and GET object requests for a single bucket.
type fakeS3 struct {
	bucket   string
	objects  map[string]fakeS3Object
	denied   map[string]bool
	requests atomic.Int64
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)

	prefix := "/" + f.bucket + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		writeS3Error(w, r, http.StatusNotFound, "NoSuchBucket", "The specified bucket does not exist.")
		return
	}
	key := strings.TrimPrefix(r.URL.Path, prefix)

	if f.denied[key] {
		writeS3Error(w, r, http.StatusForbidden, "AccessDenied", "Access Denied")
		return
	}

	obj, ok := f.objects[key]
	if !ok {
		writeS3Error(w, r, http.StatusNotFound, "NoSuchKey", "The specified key does not exist.")
		return
	}

	if obj.contentType == "" {
		w.Header()["Content-Type"] = nil
	} else {
		w.Header().Set("Content-Type", obj.contentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.data)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		io.WriteString(w, obj.data)
	}
}

func writeS3Error(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+
		`<Error><Code>`+code+`</Code><Message>`+message+`</Message><RequestId>test-request</RequestId></Error>`)
}

func newTestS3ObjectStore(t *testing.T, fake *fakeS3) (*S3ObjectStore, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewS3ObjectStore(interfaces.ObjectStoreOptions{
		EndpointURL:    srv.URL,
		Region:         "us-east-1",
		Bucket:         fake.bucket,
		AccessKey:      "AKIAEXAMPLE",
		SecretKey:      "secret",
		ForcePathStyle: true,
	}, logger)
	require.NoError(t, err)
	return store, srv
}

func TestS3ObjectStore_HeadObject(t *testing.T) {
	fake := &fakeS3{
		bucket: "photos",
		objects: map[string]fakeS3Object{
			"img.jpg":         {contentType: "image/jpeg", data: "jpeg"},
			"albums/2024.jpg": {contentType: "image/jpeg", data: "jpeg"},
		},
		denied: map[string]bool{"private.jpg": true},
	}
	store, _ := newTestS3ObjectStore(t, fake)
	ctx := context.Background()

	assert.NoError(t, store.HeadObject(ctx, "img.jpg"))
	assert.NoError(t, store.HeadObject(ctx, "albums/2024.jpg"))

	err := store.HeadObject(ctx, "missing.txt")
	assert.ErrorIs(t, err, interfaces.ErrObjectNotFound)

	err = store.HeadObject(ctx, "private.jpg")
	require.Error(t, err)
	assert.NotErrorIs(t, err, interfaces.ErrObjectNotFound)
	assert.Contains(t, err.Error(), "403")
}

func TestS3ObjectStore_GetObject(t *testing.T) {
	fake := &fakeS3{
		bucket: "docs",
		objects: map[string]fakeS3Object{
			"file.pdf":  {contentType: "application/pdf", data: "%PDF-1.7 test"},
			"empty.bin": {contentType: "application/octet-stream", data: ""},
			"raw":       {contentType: "", data: "raw bytes"},
		},
		denied: map[string]bool{"secret.pdf": true},
	}
	store, _ := newTestS3ObjectStore(t, fake)
	ctx := context.Background()

	t.Run("existing object streams bytes", func(t *testing.T) {
		obj, err := store.GetObject(ctx, "file.pdf")
		require.NoError(t, err)
		defer obj.Body.Close()

		assert.Equal(t, "application/pdf", obj.ContentType)
		assert.Equal(t, int64(len("%PDF-1.7 test")), obj.ContentLength)
		data, err := io.ReadAll(obj.Body)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.7 test", string(data))
	})

	t.Run("zero-length object", func(t *testing.T) {
		obj, err := store.GetObject(ctx, "empty.bin")
		require.NoError(t, err)
		defer obj.Body.Close()

		data, err := io.ReadAll(obj.Body)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("missing content type is reported empty", func(t *testing.T) {
		obj, err := store.GetObject(ctx, "raw")
		require.NoError(t, err)
		defer obj.Body.Close()
		assert.Equal(t, "", obj.ContentType)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := store.GetObject(ctx, "missing.pdf")
		assert.ErrorIs(t, err, interfaces.ErrObjectNotFound)
	})

	t.Run("access denied is not a missing key", func(t *testing.T) {
		_, err := store.GetObject(ctx, "secret.pdf")
		require.Error(t, err)
		assert.NotErrorIs(t, err, interfaces.ErrObjectNotFound)
		assert.Contains(t, err.Error(), "AccessDenied")
	})
}

func TestS3ObjectStore_GetObject_MissingBucket(t *testing.T) {
	fake := &fakeS3{bucket: "other"}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewS3ObjectStore(interfaces.ObjectStoreOptions{
		EndpointURL:    srv.URL,
		Region:         "us-east-1",
		Bucket:         "docs",
		AccessKey:      "AKIAEXAMPLE",
		SecretKey:      "secret",
		ForcePathStyle: true,
	}, logger)
	require.NoError(t, err)

	_, err = store.GetObject(context.Background(), "file.pdf")
	require.Error(t, err)
	assert.NotErrorIs(t, err, interfaces.ErrObjectNotFound)
	assert.Contains(t, err.Error(), "NoSuchBucket")
}

func TestS3ObjectStore_PresignGetObject(t *testing.T) {
	fake := &fakeS3{bucket: "photos"}
	store, srv := newTestS3ObjectStore(t, fake)

	presigned, err := store.PresignGetObject(context.Background(), "albums/img.jpg", 5*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(presigned)
	require.NoError(t, err)
	endpoint, err := url.Parse(srv.URL)
	require.NoError(t, err)

	assert.Equal(t, endpoint.Host, u.Host)
	assert.Equal(t, "/photos/albums/img.jpg", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Contains(t, u.Query().Get("X-Amz-Credential"), "AKIAEXAMPLE")

	// Signing is local.
	assert.Equal(t, int64(0), fake.requests.Load())
}

func TestS3ObjectStore_CanceledContext(t *testing.T) {
	fake := &fakeS3{
		bucket:  "photos",
		objects: map[string]fakeS3Object{"img.jpg": {contentType: "image/jpeg", data: "jpeg"}},
	}
	store, _ := newTestS3ObjectStore(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.HeadObject(ctx, "img.jpg")
	require.Error(t, err)
	assert.NotErrorIs(t, err, interfaces.ErrObjectNotFound)
}

func TestS3ObjectStore_Bucket(t *testing.T) {
	store, _ := newTestS3ObjectStore(t, &fakeS3{bucket: "photos"})
	assert.Equal(t, "photos", store.Bucket())
}
