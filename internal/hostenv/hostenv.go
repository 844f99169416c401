// Package hostenv resolves the platform and architecture of the machine
// running assetrank.
//
// Host queries report whatever vocabulary the operating system uses
// ("x86_64", "AMD64", "Darwin", ...). Normalize maps those reports onto the
// resolve tag vocabulary, and Provider resolves them once per process,
// degrading to resolve.UnknownContext instead of failing.
package hostenv

import (
	"context"
	"errors"
	"runtime"
)

// ErrUnsupported is returned by Host on systems without a native query.
var ErrUnsupported = errors.New("host query not supported on this system")

// Report is a raw host answer in the host's own vocabulary.
type Report struct {
	OS   string
	Arch string
}

// Query reports the host platform and architecture.
type Query interface {
	Query(ctx context.Context) (Report, error)
}

// QueryFunc adapts a function to Query.
type QueryFunc func(ctx context.Context) (Report, error)

func (f QueryFunc) Query(ctx context.Context) (Report, error) {
	return f(ctx)
}

// Host returns the native query for this system.
func Host() Query {
	return QueryFunc(hostQuery)
}

// Static returns a query that always reports os and arch.
func Static(os, arch string) Query {
	return QueryFunc(func(ctx context.Context) (Report, error) {
		return Report{OS: os, Arch: arch}, ctx.Err()
	})
}

// Override returns a query that asks base and replaces any field for which a
// non-empty override is given. base is not called when both are set.
func Override(base Query, os, arch string) Query {
	if os != "" && arch != "" {
		return Static(os, arch)
	}
	if os == "" && arch == "" {
		return base
	}
	return QueryFunc(func(ctx context.Context) (Report, error) {
		r, err := base.Query(ctx)
		if err != nil {
			return Report{}, err
		}
		if os != "" {
			r.OS = os
		}
		if arch != "" {
			r.Arch = arch
		}
		return r, nil
	})
}

// Compiled reports the GOOS/GOARCH the binary was built for. It is what the
// process runs as, which can differ from the hardware under emulation.
func Compiled() Query {
	return Static(runtime.GOOS, runtime.GOARCH)
}
