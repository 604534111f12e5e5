package isolate

import (
	"sync"

	"github.com/gpuscale/autotune/pkg/config"
)

// EntryPoint is a trainable job entry point. It receives a configuration
// snapshot and a flag controlling whether results are saved; during tuning
// the flag is always false. A non-nil error or any abnormal termination
// counts as a failed probe.
type EntryPoint func(cfg *config.Config, saveResults bool) error

var (
	registryMu sync.RWMutex
	registry   = make(map[string]EntryPoint)
)

// Register makes an entry point available to workers under the given name.
// Entry points are looked up by name because a function value cannot cross
// the process boundary. Register panics if fn is nil or the name is already
// taken, since registration is a program-startup concern.
func Register(name string, fn EntryPoint) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if fn == nil {
		panic("isolate: Register entry point is nil")
	}
	if _, dup := registry[name]; dup {
		panic("isolate: Register called twice for entry point " + name)
	}
	registry[name] = fn
}

// Registered reports whether an entry point with the given name exists.
func Registered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

func lookup(name string) (EntryPoint, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[name]
	return fn, ok
}
