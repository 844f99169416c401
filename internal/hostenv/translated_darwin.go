//go:build darwin

package hostenv

import "golang.org/x/sys/unix"

// translated reports whether the process runs under Rosetta 2.
// The sysctl is missing on Intel Macs, which reads as "not translated".
func translated() bool {
	v, err := unix.SysctlUint32("sysctl.proc_translated")
	return err == nil && v == 1
}
