//go:build linux

package evdev

import (
	"os"

	"golang.org/x/sys/unix"
)

// eviocgrab is _IOW('E', 0x90, int).
const eviocgrab = 0x40044590

func grab(f *os.File) error {
	rc, err := f.SyscallConn()
	if err != nil {
		return err
	}

	var ioctlErr error
	if err := rc.Control(func(fd uintptr) {
		ioctlErr = unix.IoctlSetInt(int(fd), eviocgrab, 1)
	}); err != nil {
		return err
	}
	return ioctlErr
}
