package diffcodec

import "errors"

// ErrInvalidBaseSnapshot is returned when a diff's `<base_snapshot>`
// line does not parse as "SystemID@version".
var ErrInvalidBaseSnapshot = errors.New("diffcodec: malformed base_snapshot line")
