package blob

import "errors"

// ErrNotFound is returned by Backend.Get/Head when id has no stored bytes.
var ErrNotFound = errors.New("blob: not found")
