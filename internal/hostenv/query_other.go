//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly && !windows

package hostenv

import "context"

func hostQuery(context.Context) (Report, error) {
	return Report{}, ErrUnsupported
}
