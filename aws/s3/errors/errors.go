// Package errors holds the error type and sentinels returned by the S3 client.
package errors

import (
	"errors"
	"fmt"
)

// Error records which call failed and on which bucket and key.
type Error struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	target := e.Bucket
	if e.Key != "" {
		if target != "" {
			target += "/"
		}
		target += e.Key
	}
	if target == "" {
		return fmt.Sprintf("s3 %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("s3 %s %s: %v", e.Op, target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket sets the bucket and returns e.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey sets the object key and returns e.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// NewError wraps err as a failure of op.
func NewError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

var (
	ErrObjectNotFound   = errors.New("s3: object not found")
	ErrBucketNotFound   = errors.New("s3: bucket not found")
	ErrAccessDenied     = errors.New("s3: access denied")
	ErrInvalidInput     = errors.New("s3: invalid input")
	ErrInvalidObjectKey = errors.New("s3: invalid object key")
)

// IsObjectNotFound reports whether err means the object does not exist.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsAccessDenied reports whether the credentials were refused.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsInvalidInput reports whether the bucket name or key was rejected before
// any request was sent.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidObjectKey)
}
