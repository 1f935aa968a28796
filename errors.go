package fastfield

import "errors"

// ErrCorruptFormat is returned by Reader construction and column opening
// when the serialized bytes are truncated, carry an unknown codec id, fail
// their footer checksum, or otherwise violate an internal invariant (a bit
// width greater than 64, a chunk count that does not match the column
// length, ...). It is never recovered from.
var ErrCorruptFormat = errors.New("fastfield: corrupt column format")
