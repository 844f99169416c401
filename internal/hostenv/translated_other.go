//go:build linux || freebsd || netbsd || openbsd || dragonfly

package hostenv

func translated() bool { return false }
