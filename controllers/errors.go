package controller

import (
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the controllers map to domain errors.
const (
	pgUniqueViolation = "23505" // duplicate signature / dependency edge
	pgRaiseException  = "P0001" // cycle guard trigger rejection
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

func isCycleRejection(err error) bool {
	return pgErrorCode(err) == pgRaiseException
}

// captureError reports an unexpected gateway failure to Sentry with enough
// context to find the offending operation.
func captureError(err error, operation string, tags map[string]string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("operation", operation)
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}
