package db

import (
  "context"
  "errors"
  "strings"

  "github.com/jackc/pgx/v5/pgconn"
)

// Postgres failure classification. Repos return raw driver errors; callers
// that care about the shape of a failure (conflict vs transient) go through
// these helpers instead of string matching at every call site.

func IsUniqueViolation(err error) bool {
  var pgErr *pgconn.PgError
  if errors.As(err, &pgErr) {
    return pgErr.Code == "23505"
  }
  msg := strings.ToLower(err.Error())
  return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "already exists")
}

func IsForeignKeyViolation(err error) bool {
  var pgErr *pgconn.PgError
  if errors.As(err, &pgErr) {
    return pgErr.Code == "23503"
  }
  return false
}

// IsRetryable reports serialization failures, deadlocks, lock timeouts and
// context deadline errors, the failures a requeued scan run can survive.
func IsRetryable(err error) bool {
  if err == nil {
    return false
  }
  if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
    return true
  }
  var pgErr *pgconn.PgError
  if errors.As(err, &pgErr) {
    switch pgErr.Code {
    case "40001", "40P01", "55P03":
      return true
    }
  }
  msg := strings.ToLower(err.Error())
  return strings.Contains(msg, "deadlock") ||
    strings.Contains(msg, "serialization") ||
    strings.Contains(msg, "timeout")
}
