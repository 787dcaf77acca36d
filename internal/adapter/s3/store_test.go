package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/motostock-inventory-service/internal/cache"
)

// fakeObjects is an in-memory objectAPI.
type fakeObjects struct {
	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	getErr   error
	putErr   error
	lastPath string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPath = aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPath = aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestStore_SetGetUnderPrefix(t *testing.T) {
	fake := newFakeObjects()
	s := newStore(fake, "motostock-cache", "env/dev/")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, cache.KeyData, []byte(`[]`)))
	assert.Equal(t, "motostock-cache/env/dev/motostock_data", fake.lastPath)
	assert.Equal(t, "application/json", fake.types["env/dev/motostock_data"])

	got, err := s.Get(ctx, cache.KeyData)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestStore_GetMissing(t *testing.T) {
	s := newStore(newFakeObjects(), "b", "")
	_, err := s.Get(context.Background(), cache.KeyLastUpdated)
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestStore_GetBare404(t *testing.T) {
	fake := newFakeObjects()
	fake.getErr = &smithyhttp.ResponseError{
		Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusNotFound}},
		Err:      errors.New("not found"),
	}
	s := newStore(fake, "b", "")

	_, err := s.Get(context.Background(), cache.KeyData)
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestStore_Errors(t *testing.T) {
	fake := newFakeObjects()
	fake.getErr = errors.New("access denied")
	fake.putErr = errors.New("slow down")
	s := newStore(fake, "b", "p/")

	_, err := s.Get(context.Background(), cache.KeyData)
	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrNotFound)
	assert.Contains(t, err.Error(), "p/motostock_data")

	err = s.Set(context.Background(), cache.KeyLastUpdated, []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slow down")
}

func TestNewStore(t *testing.T) {
	_, err := NewStore(context.Background(), Config{})
	require.Error(t, err)

	s, err := NewStore(context.Background(), Config{
		Bucket:          "motostock-cache",
		Endpoint:        "http://localhost:9000",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	})
	require.NoError(t, err)
	assert.Equal(t, "motostock-cache", s.bucket)
}
