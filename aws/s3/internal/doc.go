// Package internal contains private implementation details for the S3 module.
//
// The internal packages are organized as follows:
//   - s3api: the subset of the AWS SDK client the module calls, for mocking
//   - validation: bucket name and object key checks
//   - testutil: mocks and LocalStack helpers for tests
package internal
