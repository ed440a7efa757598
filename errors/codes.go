// Package errors provides the error handling system for the map mirror.
// It extends Go's standard error handling with structured error codes, fatal/recoverable
// classification and context preservation for log output.
package errors

// ErrorCode represents a specific error condition in the mirror.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Infrastructure errors.

	// CodeNetwork indicates a network operation failed.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeNotFound indicates a requested resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// Mirror run errors.

	// CodeCatalogUnavailable indicates the catalog could not be fetched. Fatal.
	CodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"

	// CodeFetchFailed indicates a single item could not be fetched. Recoverable.
	CodeFetchFailed ErrorCode = "FETCH_FAILED"

	// CodeValidationFailed indicates fetched content did not match its filename checksum. Recoverable.
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// CodeUploadFailed indicates an item could not be written to the object store. Fatal.
	CodeUploadFailed ErrorCode = "UPLOAD_FAILED"

	// CodeArtifactWriteFailed indicates a rendered artifact could not be written. Recoverable.
	CodeArtifactWriteFailed ErrorCode = "ARTIFACT_WRITE_FAILED"

	// CodeStateLoadFailed indicates the mirrored state could not be enumerated. Fatal.
	CodeStateLoadFailed ErrorCode = "STATE_LOAD_FAILED"

	// CodeStatePersistFailed indicates the final state snapshot could not be written. Fatal.
	CodeStatePersistFailed ErrorCode = "STATE_PERSIST_FAILED"

	// CodeDeleteFailed indicates a stale object could not be removed during cleanup.
	CodeDeleteFailed ErrorCode = "DELETE_FAILED"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// fatalCodes lists the codes that abort a mirror run.
var fatalCodes = map[ErrorCode]bool{
	CodeCatalogUnavailable: true,
	CodeUploadFailed:       true,
	CodeStateLoadFailed:    true,
	CodeStatePersistFailed: true,
	CodeInvalidConfig:      true,
}

// retryableCodes lists the codes worth retrying on a later run.
var retryableCodes = map[ErrorCode]bool{
	CodeNetwork:            true,
	CodeTimeout:            true,
	CodeCatalogUnavailable: true,
	CodeFetchFailed:        true,
	CodeUploadFailed:       true,
}
