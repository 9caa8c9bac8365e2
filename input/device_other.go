//go:build !linux

package input

import (
	"errors"
	"fmt"
)

// Device reads a Linux input device node. It only exists on Linux.
type Device struct{}

func OpenDevice(path string) (*Device, error) {
	return nil, fmt.Errorf("open input device %s: %w", path, errors.ErrUnsupported)
}

func (d *Device) Name() string { return "unsupported" }

func (d *Device) ReadBatch() ([]Event, error) { return nil, errors.ErrUnsupported }

func (d *Device) Close() error { return nil }
