//go:build pprof

package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

type pprofProfile = profile.Profile

// Modes returns the sorted list of supported profiling modes.
//
//nolint:gochecknoglobals
var Modes = sync.OnceValue(
	func() []string {
		return slices.Sorted(maps.Keys(mode))
	},
)

//nolint:gochecknoglobals
var mode = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

func supported(m string) bool {
	_, ok := mode[m]

	return ok
}

func start(m, path string, quiet bool) interface{ Stop() } {
	c := makeControl(withMode(m))

	if len(c.mode) == 0 {
		return ignore{}
	}

	return profile.Start(
		applyControl(c, withPath(path), withQuiet(quiet), withNoShutdownHook()).mode...,
	)
}

func withMode(m string) controlOption {
	return func(c control) control {
		if fn, ok := mode[m]; ok {
			c.mode = append(c.mode, fn)
		}

		return c
	}
}

func withPath(p string) controlOption {
	return func(c control) control {
		if p != "" {
			c.mode = append(c.mode, profile.ProfilePath(p))
		}

		return c
	}
}

func withQuiet(v bool) controlOption {
	return func(c control) control {
		if v {
			c.mode = append(c.mode, profile.Quiet)
		}

		return c
	}
}

// The CLI stops the profiler itself when the command context ends.
func withNoShutdownHook() controlOption {
	return func(c control) control {
		c.mode = append(c.mode, profile.NoShutdownHook)

		return c
	}
}
