package adapters

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwatch/driftwatch/internal/gateway"
	"github.com/driftwatch/driftwatch/internal/types"
)

type fakeStorage struct {
	buckets     map[string]gateway.Bucket
	objects     map[string]gateway.Object // key: bucket/key
	objectPages [][]gateway.Object
	lifecycle   []gateway.LifecycleRule
	pab         *gateway.PublicAccessBlock
	policy      string
}

func (s fakeStorage) HeadBucket(ctx context.Context, bucket string) (gateway.Bucket, error) {
	b, ok := s.buckets[bucket]
	if !ok {
		return gateway.Bucket{}, fmt.Errorf("bucket %s: %w", bucket, gateway.ErrNotFound)
	}
	return b, nil
}

func (s fakeStorage) HeadObject(ctx context.Context, bucket, key string) (gateway.Object, error) {
	obj, ok := s.objects[bucket+"/"+key]
	if !ok {
		return gateway.Object{}, fmt.Errorf("object %s/%s: %w", bucket, key, gateway.ErrNotFound)
	}
	return obj, nil
}

func (s fakeStorage) ListObjects(ctx context.Context, bucket, prefix, pageToken string) ([]gateway.Object, string, error) {
	idx := pageIndex(pageToken)

	page := make([]gateway.Object, 0, len(s.objectPages[idx]))
	for _, obj := range s.objectPages[idx] {
		if prefix == "" || strings.HasPrefix(obj.Key, prefix) {
			page = append(page, obj)
		}
	}

	return page, nextToken(idx, len(s.objectPages)), nil
}

func (s fakeStorage) LifecycleRules(ctx context.Context, bucket string) ([]gateway.LifecycleRule, error) {
	return s.lifecycle, nil
}

func (s fakeStorage) GetPublicAccessBlock(ctx context.Context, bucket string) (gateway.PublicAccessBlock, error) {
	if s.pab == nil {
		return gateway.PublicAccessBlock{}, fmt.Errorf("no public access block: %w", gateway.ErrNotFound)
	}
	return *s.pab, nil
}

func (s fakeStorage) GetBucketPolicy(ctx context.Context, bucket string) (string, bool, error) {
	return s.policy, s.policy != "", nil
}

func TestS3BucketExists(t *testing.T) {
	clients := fakeClients{storage: fakeStorage{buckets: map[string]gateway.Bucket{
		"assets": {Name: "assets", Region: "us-east-1"},
	}}}

	req := Request{
		Check:  checkFor(types.ServiceS3, "bucket_exists", types.OpEquals),
		Params: map[string]any{"bucket": "assets"},
	}

	result, err := s3BucketExists(context.Background(), req, clients)

	require.NoError(t, err)
	assert.Equal(t, types.StatusPass, result.Status)

	req.Params = map[string]any{"bucket": "ghost"}
	result, err = s3BucketExists(context.Background(), req, clients)

	require.NoError(t, err)
	assert.Equal(t, types.StatusFail, result.Status)
}

func TestS3ObjectCountPagesAndPrefix(t *testing.T) {
	clients := fakeClients{storage: fakeStorage{objectPages: [][]gateway.Object{
		{{Key: "logs/a"}, {Key: "logs/b"}, {Key: "data/c"}},
		{{Key: "logs/d"}},
	}}}

	t.Run("counts every page", func(t *testing.T) {
		req := Request{
			Check:  checkFor(types.ServiceS3, "object_count", types.OpEquals),
			Params: map[string]any{"bucket": "assets", "expected": 4},
		}

		result, err := s3ObjectCount(context.Background(), req, clients)

		require.NoError(t, err)
		assert.Equal(t, types.StatusPass, result.Status, result.Reason)
		assert.Equal(t, 4, result.Data["count"])
	})

	t.Run("prefix filter", func(t *testing.T) {
		req := Request{
			Check:  checkFor(types.ServiceS3, "object_count", types.OpEquals),
			Params: map[string]any{"bucket": "assets", "prefix": "logs/", "expected": 3},
		}

		result, err := s3ObjectCount(context.Background(), req, clients)

		require.NoError(t, err)
		assert.Equal(t, types.StatusPass, result.Status, result.Reason)
	})

	t.Run("ordering operator on count", func(t *testing.T) {
		req := Request{
			Check:  checkFor(types.ServiceS3, "object_count", types.OpLessThan),
			Params: map[string]any{"bucket": "assets", "expected": 10},
		}

		result, err := s3ObjectCount(context.Background(), req, clients)

		require.NoError(t, err)
		assert.Equal(t, types.StatusPass, result.Status, result.Reason)
	})
}

func TestS3PublicAccessBlock(t *testing.T) {
	locked := &gateway.PublicAccessBlock{
		BlockPublicACLs:       true,
		IgnorePublicACLs:      true,
		BlockPublicPolicy:     true,
		RestrictPublicBuckets: true,
	}

	t.Run("fully blocked passes", func(t *testing.T) {
		clients := fakeClients{storage: fakeStorage{pab: locked}}
		req := Request{
			Check:  checkFor(types.ServiceS3, "public_access_block", types.OpEquals),
			Params: map[string]any{"bucket": "assets"},
		}

		result, err := s3PublicAccessBlock(context.Background(), req, clients)

		require.NoError(t, err)
		assert.Equal(t, types.StatusPass, result.Status, result.Reason)
	})

	t.Run("missing configuration fails", func(t *testing.T) {
		clients := fakeClients{storage: fakeStorage{}}
		req := Request{
			Check:  checkFor(types.ServiceS3, "public_access_block", types.OpEquals),
			Params: map[string]any{"bucket": "assets"},
		}

		result, err := s3PublicAccessBlock(context.Background(), req, clients)

		require.NoError(t, err)
		assert.Equal(t, types.StatusFail, result.Status)
	})
}
