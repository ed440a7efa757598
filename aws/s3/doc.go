// Package s3 provides a small, mockable Go client for S3-compatible object
// storage, built on AWS SDK v2.
//
// It covers what the map mirror needs from a bucket: single-object Put, Get
// and Delete, and page-at-a-time listing with continuation tokens. Any
// S3-compatible endpoint works (AWS, Tencent COS, MinIO, LocalStack) through
// WithEndpoint and WithForcePathStyle.
//
// Example usage:
//
//	client, err := s3.New(ctx,
//	    s3.WithRegion("ap-shanghai"),
//	    s3.WithEndpoint("https://cos.ap-shanghai.myqcloud.com"),
//	    s3.WithStaticCredentials(id, secret),
//	)
//	if err != nil {
//	    return err
//	}
//
//	if err := client.Put(ctx, "maps", "index.html", page); err != nil {
//	    return err
//	}
package s3
