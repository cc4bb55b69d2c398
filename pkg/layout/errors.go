package layout

import "errors"

// ErrLayoutTimeout is wrapped around the Result returned when an
// engine's Budget is exceeded mid-run (§7). The Result still carries
// whatever positions were placed before the deadline.
var ErrLayoutTimeout = errors.New("layout: budget exceeded")
