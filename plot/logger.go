package plot

import (
	"log/slog"

	"github.com/gogpu/uvmesh"
)

// slogger returns the logger configured with uvmesh.SetLogger.
func slogger() *slog.Logger { return uvmesh.Logger() }
