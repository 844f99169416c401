//go:build windows

package hostenv

import (
	"context"
	"errors"
	"os"
	"strings"

	"golang.org/x/sys/windows"
)

// IMAGE_FILE_MACHINE_* values returned by IsWow64Process2.
const (
	imageFileMachineI386  = 0x014c
	imageFileMachineAMD64 = 0x8664
	imageFileMachineARM64 = 0xaa64
)

var procIsWow64Process2 = windows.NewLazySystemDLL("kernel32.dll").NewProc("IsWow64Process2")

func hostQuery(ctx context.Context) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	arch, err := nativeMachine()
	if err != nil {
		arch = processorArchitecture()
	}
	if arch == "" {
		return Report{}, errors.New("cannot determine processor architecture")
	}
	return Report{OS: "windows", Arch: arch}, nil
}

// nativeMachine asks the kernel for the hardware architecture, which stays
// correct when this process runs under WOW64 or x64 emulation on ARM64.
func nativeMachine() (string, error) {
	if err := procIsWow64Process2.Find(); err != nil {
		return "", err
	}
	var process, native uint16
	if err := windows.IsWow64Process2(windows.CurrentProcess(), &process, &native); err != nil {
		return "", err
	}
	switch native {
	case imageFileMachineAMD64:
		return "amd64", nil
	case imageFileMachineARM64:
		return "arm64", nil
	case imageFileMachineI386:
		return "386", nil
	default:
		return "", errors.New("unrecognized native machine")
	}
}

func processorArchitecture() string {
	// Set only for 32-bit processes on 64-bit Windows.
	if v := strings.TrimSpace(os.Getenv("PROCESSOR_ARCHITEW6432")); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv("PROCESSOR_ARCHITECTURE"))
}
