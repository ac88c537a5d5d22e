package mqtt

import "errors"

// ErrTimeout is returned when the broker does not confirm an operation in time.
var ErrTimeout = errors.New("timeout waiting for broker")
