package s3

import (
	"context"
	"errors"
	"io"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/s3types"
)

func TestClient_Put(t *testing.T) {
	tests := []struct {
		name            string
		bucket          string
		key             string
		data            []byte
		opts            []s3types.UploadOption
		putErr          error
		wantContentType string
		wantErr         error
	}{
		{
			name:            "explicit content type",
			bucket:          "maps",
			key:             "ctf1_0123abcd.map",
			data:            []byte{0x44, 0x41, 0x54, 0x41},
			opts:            []s3types.UploadOption{WithContentType("application/octet-stream")},
			wantContentType: "application/octet-stream",
		},
		{
			name:            "content type from extension",
			bucket:          "maps",
			key:             "index.html",
			data:            []byte("<pre></pre>"),
			wantContentType: "text/html; charset=utf-8",
		},
		{
			name:            "content type sniffed without extension",
			bucket:          "maps",
			key:             "README",
			data:            []byte("plain words"),
			wantContentType: "text/plain; charset=utf-8",
		},
		{
			name:    "empty bucket",
			bucket:  "",
			key:     "a.map",
			wantErr: s3errors.ErrInvalidInput,
		},
		{
			name:    "invalid key",
			bucket:  "maps",
			key:     "../escape.map",
			wantErr: s3errors.ErrInvalidInput,
		},
		{
			name:    "access denied",
			bucket:  "maps",
			key:     "a.map",
			putErr:  &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"},
			wantErr: s3errors.ErrAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mock := &testutil.MockS3Client{
				PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
					called = true
					if tt.putErr != nil {
						return nil, tt.putErr
					}
					assert.Equal(t, tt.bucket, aws.ToString(params.Bucket))
					assert.Equal(t, tt.key, aws.ToString(params.Key))
					assert.Equal(t, tt.wantContentType, aws.ToString(params.ContentType))
					assert.Equal(t, int64(len(tt.data)), aws.ToInt64(params.ContentLength))

					body, err := io.ReadAll(params.Body)
					require.NoError(t, err)
					assert.Equal(t, tt.data, body)
					return &s3.PutObjectOutput{}, nil
				},
			}

			err := NewWithClient(mock).Put(context.Background(), tt.bucket, tt.key, tt.data, tt.opts...)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, called)
		})
	}
}

func TestClient_Put_Metadata(t *testing.T) {
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			assert.Equal(t, "run-1", params.Metadata["run-id"])
			assert.Equal(t, "no-cache", aws.ToString(params.CacheControl))
			return &s3.PutObjectOutput{}, nil
		},
	}

	err := NewWithClient(mock).Put(context.Background(), "maps", "maps.json", []byte("{}"),
		WithMetadata(map[string]string{"run-id": "run-1"}),
		WithCacheControl("no-cache"),
	)
	require.NoError(t, err)
}

func TestClient_Get(t *testing.T) {
	tests := []struct {
		name    string
		getErr  error
		want    []byte
		wantErr error
	}{
		{
			name: "found",
			want: []byte(`{"a.map":{"date":1,"size":2}}`),
		},
		{
			name:    "typed no such key",
			getErr:  &types.NoSuchKey{},
			wantErr: s3errors.ErrObjectNotFound,
		},
		{
			name:    "generic not found",
			getErr:  &smithy.GenericAPIError{Code: "NotFound"},
			wantErr: s3errors.ErrObjectNotFound,
		},
		{
			name:    "no such bucket",
			getErr:  &types.NoSuchBucket{},
			wantErr: s3errors.ErrBucketNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &testutil.MockS3Client{
				GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
					assert.Equal(t, "maps.json", aws.ToString(params.Key))
					if tt.getErr != nil {
						return nil, tt.getErr
					}
					return testutil.GetObjectOutput(tt.want), nil
				},
			}

			got, err := NewWithClient(mock).Get(context.Background(), "maps", "maps.json")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Delete(t *testing.T) {
	var deleted []string
	mock := &testutil.MockS3Client{
		DeleteObjectFunc: func(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
			deleted = append(deleted, aws.ToString(params.Key))
			return &s3.DeleteObjectOutput{}, nil
		},
	}
	client := NewWithClient(mock)

	require.NoError(t, client.Delete(context.Background(), "maps", "old_00000000.map"))
	assert.Equal(t, []string{"old_00000000.map"}, deleted)

	err := client.Delete(context.Background(), "", "old_00000000.map")
	assert.ErrorIs(t, err, s3errors.ErrInvalidInput)
}

func TestClient_List_Pagination(t *testing.T) {
	keys := []string{"a.map", "b.map", "c.map", "d.map", "e.map"}
	pages := testutil.ListPages(keys, 10, 2)
	require.Len(t, pages, 3)

	var tokens []string
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			assert.Equal(t, int32(2), aws.ToInt32(params.MaxKeys))
			token := aws.ToString(params.ContinuationToken)
			tokens = append(tokens, token)
			idx := 0
			if token != "" {
				var err error
				idx, err = strconv.Atoi(token)
				require.NoError(t, err)
			}
			return pages[idx], nil
		},
	}
	client := NewWithClient(mock)

	var got []string
	token := ""
	for {
		page, err := client.List(context.Background(), "maps", "",
			WithListMaxKeys(2), WithContinuationToken(token))
		require.NoError(t, err)
		for _, obj := range page.Objects {
			got = append(got, obj.Key)
			assert.Equal(t, int64(10), obj.Size)
			assert.Equal(t, "etag", obj.ETag)
		}
		if !page.IsTruncated {
			break
		}
		token = page.NextContinuationToken
	}

	assert.Equal(t, keys, got)
	assert.Equal(t, []string{"", "1", "2"}, tokens)
}

func TestClient_List_Error(t *testing.T) {
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return nil, errors.New("connection reset")
		},
	}

	_, err := NewWithClient(mock).List(context.Background(), "maps", "")
	require.Error(t, err)

	var s3Err *s3errors.Error
	require.ErrorAs(t, err, &s3Err)
	assert.Equal(t, "list", s3Err.Op)
	assert.Equal(t, "maps", s3Err.Bucket)
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		key  string
		data []byte
		want string
	}{
		{key: "last-sync.svg", want: "image/svg+xml"},
		{key: "maps.json", want: "application/json"},
		{key: "blob", data: []byte{0x00, 0x01, 0x02}, want: "application/octet-stream"},
		{key: "blob", want: DefaultContentType},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContentType(tt.key, tt.data))
		})
	}
}
