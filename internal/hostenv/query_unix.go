//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package hostenv

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

func hostQuery(ctx context.Context) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return Report{}, fmt.Errorf("uname: %w", err)
	}
	r := Report{
		OS:   unix.ByteSliceToString(u.Sysname[:]),
		Arch: unix.ByteSliceToString(u.Machine[:]),
	}
	// uname reports x86_64 inside Rosetta; the hardware is arm64.
	if translated() {
		r.Arch = "arm64"
	}
	return r, nil
}
