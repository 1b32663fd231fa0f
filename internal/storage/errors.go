package storage

import "errors"

// ErrNotFound is wrapped into errors returned by Get when a key is absent
// from a file catalog or KV namespace (spec.md §7, "metadata-missing").
var ErrNotFound = errors.New("storage: key not found")
