package s3

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/s3types"
)

// TestClient_New tests the New() constructor with a static AWS config so no
// credential chain lookup happens.
func TestClient_New(t *testing.T) {
	tests := []struct {
		name       string
		opts       []s3types.Option
		wantRegion string
	}{
		{
			name:       "default region",
			opts:       nil,
			wantRegion: "us-east-1",
		},
		{
			name:       "with region option",
			opts:       []s3types.Option{WithRegion("ap-shanghai")},
			wantRegion: "ap-shanghai",
		},
		{
			name: "with multiple options",
			opts: []s3types.Option{
				WithRegion("eu-west-1"),
				WithMaxRetries(5),
				WithEndpoint("https://cos.example.com"),
				WithForcePathStyle(true),
				WithTimeout(10 * time.Second),
			},
			wantRegion: "eu-west-1",
		},
		{
			name: "custom http client wins over timeout",
			opts: []s3types.Option{
				WithCustomHTTPClient(&http.Client{}),
				WithTimeout(time.Second),
			},
			wantRegion: "us-east-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]s3types.Option{WithAWSConfig(&aws.Config{})}, tt.opts...)
			client, err := New(context.Background(), opts...)
			require.NoError(t, err)
			require.NotNil(t, client)
			assert.NotNil(t, client.s3Client)
			assert.Equal(t, tt.wantRegion, client.Region())
		})
	}
}

func TestClient_New_StaticCredentials(t *testing.T) {
	client, err := New(context.Background(),
		WithRegion("ap-shanghai"),
		WithStaticCredentials("id", "secret"),
	)
	require.NoError(t, err)

	creds, err := client.config.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "id", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)
}

func TestClient_NewWithClient(t *testing.T) {
	mock := &testutil.MockS3Client{}
	client := NewWithClient(mock)

	require.NotNil(t, client)
	assert.Same(t, mock, client.s3Client)
	assert.Empty(t, client.Region())
}

func TestOptions_Upload(t *testing.T) {
	cfg := &s3types.UploadOptionConfig{}
	for _, opt := range []s3types.UploadOption{
		WithContentType("text/html"),
		WithCacheControl("no-cache"),
		WithMetadata(map[string]string{"a": "1"}),
		WithMetadata(map[string]string{"b": "2"}),
	} {
		opt(cfg)
	}

	assert.Equal(t, "text/html", cfg.ContentType)
	assert.Equal(t, "no-cache", cfg.CacheControl)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, cfg.Metadata)
}

func TestOptions_List(t *testing.T) {
	cfg := &s3types.ListOptionConfig{MaxKeys: 1000}

	WithListMaxKeys(0)(cfg)
	assert.Equal(t, int32(1000), cfg.MaxKeys)

	WithListMaxKeys(50)(cfg)
	WithContinuationToken("tok")(cfg)
	assert.Equal(t, int32(50), cfg.MaxKeys)
	assert.Equal(t, "tok", cfg.ContinuationToken)
}
