// Command navsim replays navigation scenarios described in YAML.
//
// Usage:
//
//	navsim run scenario.yaml [--events]
//	navsim validate scenario.yaml
//
// Logging and tracing follow the NAVMESH_* environment variables read by
// the config package.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
