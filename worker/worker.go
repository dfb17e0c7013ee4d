package worker

import (
	"github.com/keyrig/keyrig/lib/log"
	"github.com/keyrig/keyrig/worker/handlers"
	"github.com/keyrig/keyrig/worker/types"

	_ "github.com/keyrig/keyrig/worker/gsettings"
	_ "github.com/keyrig/keyrig/worker/kglobal"
)

// NewBackend returns the shortcuts backend for the current desktop
// environment. Pass an empty desktop to auto-detect.
func NewBackend(desktop string) (types.Backend, error) {
	if desktop == "" {
		desktop = DetectDesktop()
		log.Infof("detected desktop environment: %s", desktop)
	}
	return handlers.GetBackendForDesktop(desktop)
}
