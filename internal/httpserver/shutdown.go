package httpserver

import "time"

// ShutdownTimeout bounds graceful shutdown: in-flight requests and the
// asset ingestor's drain both get this long before the process exits.
var ShutdownTimeout = 10 * time.Second
