//go:build linux

package input

import (
	"fmt"

	evdev "github.com/holoplot/go-evdev"
)

// Device reads a Linux input device node in the host's native record
// layout. Each batch is the group of events the kernel closes with a
// SYN_REPORT. Use Reader for records in a foreign layout, such as the
// 16-byte records of a 32-bit board replayed on a 64-bit host.
type Device struct {
	dev *evdev.InputDevice
}

// OpenDevice opens the input node at path.
func OpenDevice(path string) (*Device, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input device %s: %w", path, err)
	}
	return &Device{dev: dev}, nil
}

// Name returns the name the kernel reports for the device.
func (d *Device) Name() string {
	name, err := d.dev.Name()
	if err != nil {
		return "unknown"
	}
	return name
}

// ReadBatch blocks until the next SYN_REPORT, or MaxBatch events, and
// returns the key and axis events read.
func (d *Device) ReadBatch() ([]Event, error) {
	var events []Event
	for range MaxBatch {
		ev, err := d.dev.ReadOne()
		if err != nil {
			return nil, err
		}
		if ev.Type == evdev.EV_SYN && ev.Code == evdev.SYN_REPORT {
			break
		}
		if e, ok := fromEvdev(*ev); ok {
			events = append(events, e)
		}
	}
	return events, nil
}

func (d *Device) Close() error {
	return d.dev.Close()
}

func fromEvdev(ev evdev.InputEvent) (Event, bool) {
	e := Event{Code: uint16(ev.Code), Value: ev.Value}
	switch ev.Type {
	case evdev.EV_KEY:
		e.Kind = Button
	case evdev.EV_ABS:
		e.Kind = Axis
	default:
		return Event{}, false
	}
	return e, true
}
