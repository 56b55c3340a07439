// Package profile provides optional runtime profiling of the expander.
//
// Profiling is backed by [github.com/pkg/profile] and is only compiled in
// when building with the "pprof" tag ([Tag]). Without the tag, [Profiler.Start]
// returns a no-op and [Modes] is empty.
//
//	p := profile.Make(profile.WithMode("cpu"), profile.WithPath(dir))
//	defer p.Start().Stop()
//
// Expanding a large module tree under the "cpu" or "allocs" modes is the
// usual way to find hot spots in the enforester and the scope-set resolver:
//
//	go build -tags pprof -o stx .
//	./stx --pprof-mode cpu expand big.js
//	go tool pprof -http=: stx ~/.cache/stx/pprof/cpu.pprof
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
