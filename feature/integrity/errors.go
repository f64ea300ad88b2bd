package integrity

import "errors"

// ErrStorageDisabled is returned by storage checks when no object store is configured.
var ErrStorageDisabled = errors.New("object storage is not configured")
