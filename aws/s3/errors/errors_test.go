package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{name: "bucket and key", err: NewError("get", cause).WithBucket("maps").WithKey("a.map"), want: "s3 get maps/a.map: boom"},
		{name: "bucket only", err: NewError("list", cause).WithBucket("maps"), want: "s3 list maps: boom"},
		{name: "key only", err: NewError("put", cause).WithKey("a.map"), want: "s3 put a.map: boom"},
		{name: "neither", err: NewError("put", cause), want: "s3 put: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, cause)
		})
	}
}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		notFound     bool
		accessDenied bool
		invalidInput bool
	}{
		{name: "not found", err: NewError("get", ErrObjectNotFound), notFound: true},
		{name: "access denied", err: errors.Join(ErrAccessDenied, errors.New("403")), accessDenied: true},
		{name: "invalid input", err: NewError("put", ErrInvalidInput), invalidInput: true},
		{name: "invalid key", err: NewError("put", ErrInvalidObjectKey), invalidInput: true},
		{name: "other", err: errors.New("reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsObjectNotFound(tt.err))
			assert.Equal(t, tt.accessDenied, IsAccessDenied(tt.err))
			assert.Equal(t, tt.invalidInput, IsInvalidInput(tt.err))
		})
	}
}
