package observability

import "github.com/bigearthnet-go/bencommon/internal/logger"

// Package-level cached logger instance.
var log = logger.Global().Module("metrics")
