package minio

import (
	"errors"
	"net/http"

	minioErr "github.com/minio/minio-go/v7"

	"github.com/rqwire/rqwire/errs"
)

// mapError translates a MinIO SDK error into a *errs.Error using the same
// kinds the client itself returns.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	// MinIO SDK exposes a typed ErrorResponse for S3-protocol errors
	var resp minioErr.ErrorResponse
	if errors.As(err, &resp) {
		switch resp.StatusCode {
		case http.StatusForbidden, http.StatusUnauthorized:
			return errs.Wrap(errs.KindAuth, msg, err)
		}

		switch resp.Code {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return errs.Wrap(errs.KindAuth, msg, err)
		case "InvalidBucketName", "InvalidObjectName", "KeyTooLongError",
			"NoSuchBucket", "NoSuchKey":
			return errs.Wrap(errs.KindDataSer, msg, err)
		}
	}

	// Anything else is treated as a generic connection / I/O failure
	return errs.Wrap(errs.KindConnection, msg, err)
}
