// Package guard switches the binaries into test mode when imported by a test.
package guard

import (
	"os"
	"sync"
)

// EnvVar is the flag the binaries check before touching the network.
const EnvVar = "INVSYS_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(EnvVar) == "" {
			_ = os.Setenv(EnvVar, "1")
		}
	})
}
