// Package testutil provides test helper functions.
package testutil

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// GenerateTestBucketName generates a valid test bucket name.
// Bucket names must be DNS-compliant and globally unique.
func GenerateTestBucketName(prefix string) string {
	if prefix == "" {
		prefix = "test"
	}
	return fmt.Sprintf("%s-bucket-%d-%d", prefix, time.Now().Unix(), rand.Intn(100000))
}

// GetObjectOutput builds a GetObject response carrying data.
func GetObjectOutput(data []byte) *s3.GetObjectOutput {
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}
}

// ListPages splits keys into ListObjectsV2 pages of pageSize keys each. The
// continuation token of page i is its index as a string, so a mock can serve
// page i+1 by parsing the token it receives.
func ListPages(keys []string, size int64, pageSize int) []*s3.ListObjectsV2Output {
	if pageSize <= 0 {
		pageSize = len(keys)
	}

	var pages []*s3.ListObjectsV2Output
	for start := 0; start < len(keys) || len(pages) == 0; start += pageSize {
		end := min(start+pageSize, len(keys))
		page := &s3.ListObjectsV2Output{
			KeyCount: aws.Int32(int32(end - start)),
		}
		for _, key := range keys[start:end] {
			page.Contents = append(page.Contents, types.Object{
				Key:          aws.String(key),
				Size:         aws.Int64(size),
				LastModified: aws.Time(time.UnixMilli(1_700_000_000_000).UTC()),
				ETag:         aws.String(`"etag"`),
			})
		}
		if end < len(keys) {
			page.IsTruncated = aws.Bool(true)
			page.NextContinuationToken = aws.String(strconv.Itoa(len(pages) + 1))
		} else {
			page.IsTruncated = aws.Bool(false)
		}
		pages = append(pages, page)
		if end >= len(keys) {
			break
		}
	}

	return pages
}
