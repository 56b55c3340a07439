//go:build pprof

package profile

// control accumulates the options passed to the underlying profiler.
type control struct {
	mode []func(*pprofProfile)
}

type controlOption func(control) control

func makeControl(opts ...controlOption) control {
	var c control

	return applyControl(c, opts...)
}

func applyControl(c control, opts ...controlOption) control {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}
