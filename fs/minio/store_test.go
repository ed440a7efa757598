package minio

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/store"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantNotFound bool
	}{
		{
			name:         "no such key",
			err:          minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound},
			wantNotFound: true,
		},
		{
			name:         "bare 404",
			err:          minio.ErrorResponse{StatusCode: http.StatusNotFound},
			wantNotFound: true,
		},
		{
			name: "missing bucket is not a missing key",
			err:  minio.ErrorResponse{Code: "NoSuchBucket", StatusCode: http.StatusNotFound},
		},
		{
			name: "access denied",
			err:  minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden},
		},
		{
			name:         "wrapped",
			err:          fmt.Errorf("get: %w", minio.ErrorResponse{Code: "NoSuchKey"}),
			wantNotFound: true,
		},
		{
			name: "plain error",
			err:  errors.New("dial tcp: refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			assert.Equal(t, tt.wantNotFound, errors.Is(got, store.ErrNotFound))
			assert.Error(t, got)
		})
	}

	assert.NoError(t, translateError(nil))
}

func TestNew_RequiresEndpointAndBucket(t *testing.T) {
	_, err := New(Config{Bucket: "maps"})
	assert.Error(t, err)

	_, err = New(Config{Endpoint: "localhost:9000"})
	assert.Error(t, err)

	s, err := New(Config{Endpoint: "localhost:9000", Bucket: "maps", AccessKeyID: "a", SecretAccessKey: "b"})
	assert.NoError(t, err)
	assert.NotNil(t, s)
}
