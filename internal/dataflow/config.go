package dataflow

import (
	"os"
	"strconv"
	"sync"
)

// EnvNumWorkers overrides the default parallel pool size.
const EnvNumWorkers = "NUM_WORKLIST_WORKER"

const defaultWorkers = 4

// Config parameterizes the parallel driver. It is passed down through
// pass pipelines; only the outermost driver should reach for the
// process-wide default.
type Config struct {
	Workers int
}

var (
	defaultOnce   sync.Once
	defaultConfig Config
)

// DefaultConfig returns the process-wide configuration, reading
// NUM_WORKLIST_WORKER once on first use.
func DefaultConfig() Config {
	defaultOnce.Do(func() {
		workers := defaultWorkers
		if v := os.Getenv(EnvNumWorkers); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				workers = n
			} else {
				log.Warningf("ignoring %s=%q: not a positive integer", EnvNumWorkers, v)
			}
		}
		defaultConfig = Config{Workers: workers}
	})
	return defaultConfig
}
