// Package validation provides input validation for bucket names and object keys.
//
// Inputs are validated before being sent to the object store so that a bad
// catalog entry cannot escape the bucket or produce an unreadable key.
package validation

import (
	"strings"
	"unicode"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/errors"
)

// maxKeyLength is the S3 limit on object key length in bytes.
const maxKeyLength = 1024

// ValidateBucketName performs the minimal checks S3-compatible stores share:
// length 3-63, lower-case letters, digits, dots and hyphens, alphanumeric at
// both ends. Tencent COS style "name-appid" buckets pass.
func ValidateBucketName(bucket string) error {
	if len(bucket) < 3 || len(bucket) > 63 {
		return errors.NewError("validateBucketName", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("bucket name must be between 3 and 63 characters")
	}

	for _, r := range bucket {
		if !isValidBucketChar(r) {
			return errors.NewError("validateBucketName", errors.ErrInvalidInput).
				WithBucket(bucket).
				WithMessage("bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	first, last := rune(bucket[0]), rune(bucket[len(bucket)-1])
	if !isAlnum(first) || !isAlnum(last) {
		return errors.NewError("validateBucketName", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("bucket name must start and end with a letter or number")
	}

	return nil
}

// ValidateObjectKey validates an object key.
// Map names routinely contain dots, so only whole ".." path segments count as traversal.
func ValidateObjectKey(key string) error {
	if key == "" {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot be empty")
	}

	if hasPathTraversal(key) {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot contain path traversal sequences")
	}

	if len(key) > maxKeyLength {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot exceed 1024 characters")
	}

	if hasControlCharacters(key) {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot contain control characters")
	}

	return nil
}

func isValidBucketChar(r rune) bool {
	return isAlnum(r) || r == '.' || r == '-'
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// hasPathTraversal reports absolute keys and keys with a ".." segment.
func hasPathTraversal(key string) bool {
	if strings.HasPrefix(key, "/") || strings.HasPrefix(key, `\`) {
		return true
	}
	if len(key) >= 3 && key[1] == ':' && (key[2] == '\\' || key[2] == '/') {
		return true
	}

	for _, seg := range strings.FieldsFunc(key, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

func hasControlCharacters(key string) bool {
	for _, char := range key {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}
