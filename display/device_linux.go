//go:build linux

package display

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Device is the display controller's character device. Each register write
// is one ioctl carrying a pointer to the 16-bit word.
type Device struct {
	fd int
}

// OpenDevice opens the controller node, such as /dev/Tetris.
func OpenDevice(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open display device %s: %w", path, err)
	}
	return &Device{fd: fd}, nil
}

func (d *Device) WriteRegister(reg int, word uint16) error {
	arg := struct{ p uint16 }{word}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), uintptr(IoctlCommand(reg)), uintptr(unsafe.Pointer(&arg)))
	if errno != 0 {
		return errno
	}
	return nil
}

func (d *Device) Close() error {
	return unix.Close(d.fd)
}
