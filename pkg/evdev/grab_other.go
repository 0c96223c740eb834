//go:build !linux

package evdev

import "os"

func grab(*os.File) error {
	return ErrGrabUnsupported
}
