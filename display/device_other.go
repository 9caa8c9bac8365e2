//go:build !linux

package display

import (
	"errors"
	"fmt"
)

// Device is the display controller's character device. It only exists on
// Linux.
type Device struct{}

func OpenDevice(path string) (*Device, error) {
	return nil, fmt.Errorf("open display device %s: %w", path, errors.ErrUnsupported)
}

func (d *Device) WriteRegister(int, uint16) error { return errors.ErrUnsupported }

func (d *Device) Close() error { return nil }
