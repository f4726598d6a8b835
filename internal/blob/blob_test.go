package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-backend/config"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	info, err := s.Put(ctx, "floor-plans/p1/plan.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "floor-plans/p1/plan.png", info.Key)
	assert.Equal(t, int64(9), info.Size)

	_, err = s.Put(ctx, "floor-plans/p1/plan.png", strings.NewReader("again"), "image/png")
	assert.ErrorIs(t, err, ErrExists)

	got, rc, err := s.Get(ctx, "floor-plans/p1/plan.png")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "png-bytes", string(body))
	assert.Equal(t, "image/png", got.ContentType)

	_, _, err = s.Get(ctx, "floor-plans/p1/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	for _, bad := range []string{"", "/etc/passwd", "../secret", "a/../../b"} {
		_, err := s.Put(ctx, bad, strings.NewReader("x"), "")
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}

	deleted, err := s.Delete(ctx, "floor-plans/p1/plan.png")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = s.Delete(ctx, "floor-plans/p1/plan.png")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFilesystem(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), config.StorageConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, s.Driver())

	s, err = Open(context.Background(), config.StorageConfig{Driver: "fs", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, s.Driver())

	_, err = Open(context.Background(), config.StorageConfig{Driver: "s3"})
	assert.Error(t, err)

	_, err = Open(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}

// fakeS3 answers the handful of path-style S3 calls the store makes.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
}

type fakeObject struct {
	body        []byte
	contentType string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	resp := func(code int, body []byte, h http.Header) *http.Response {
		if h == nil {
			h = http.Header{}
		}
		return &http.Response{StatusCode: code, Body: io.NopCloser(bytes.NewReader(body)), Header: h, Request: req}
	}
	objHeaders := func(o fakeObject) http.Header {
		return http.Header{
			"Content-Length": {strconv.Itoa(len(o.body))},
			"Content-Type":   {o.contentType},
			"Etag":           {`"etag"`},
			"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
		}
	}

	switch req.Method {
	case http.MethodHead:
		if o, ok := f.objects[key]; ok {
			return resp(http.StatusOK, nil, objHeaders(o)), nil
		}
		return resp(http.StatusNotFound, nil, nil), nil
	case http.MethodGet:
		if o, ok := f.objects[key]; ok {
			return resp(http.StatusOK, o.body, objHeaders(o)), nil
		}
		return resp(http.StatusNotFound, []byte(`<Error><Code>NoSuchKey</Code></Error>`), http.Header{"Content-Type": {"application/xml"}}), nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunked(body); ok {
			body = dec
		}
		f.objects[key] = fakeObject{body: body, contentType: req.Header.Get("Content-Type")}
		return resp(http.StatusOK, nil, http.Header{"Etag": {`"etag"`}}), nil
	case http.MethodDelete:
		delete(f.objects, key)
		return resp(http.StatusNoContent, nil, nil), nil
	}
	return resp(http.StatusNotImplemented, nil, nil), nil
}

// decodeChunked unwraps a single-chunk aws-chunked body.
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 || parts[2] != "0" {
		return nil, false
	}
	var size int
	if _, err := fmt.Sscanf(parts[0], "%x", &size); err != nil || size != len(parts[1]) {
		return nil, false
	}
	return []byte(parts[1]), true
}

func TestS3(t *testing.T) {
	fake := &fakeS3{objects: make(map[string]fakeObject)}
	s, err := NewS3(context.Background(), config.S3Config{
		Bucket:          "inventory",
		Endpoint:        "https://s3.test.local",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: fake}
	})
	require.NoError(t, err)
	assert.Equal(t, DriverS3, s.Driver())
	exerciseStore(t, s)
}
