//go:build !pprof

package profile

// Modes returns nil when built without the pprof tag.
func Modes() []string { return nil }

func supported(string) bool { return false }

func start(string, string, bool) interface{ Stop() } { return ignore{} }
