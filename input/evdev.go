package input

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Record sizes of struct input_event: a timeval of two 32-bit or two
// 64-bit words followed by type, code and value.
const (
	RecordSize32 = 16
	RecordSize64 = 24
)

// NativeRecordSize is the record size on the running architecture.
const NativeRecordSize = RecordSize32 + (strconv.IntSize/64)*(RecordSize64-RecordSize32)

// MaxBatch is the number of records read at once.
const MaxBatch = 32

const (
	evKey = 1
	evAbs = 3
)

var (
	ErrShortRecord = errors.New("input: short evdev record")
	ErrRecordSize  = errors.New("input: unsupported record size")
)

// Reader decodes evdev records from a device node or any other stream.
type Reader struct {
	r    io.Reader
	size int
	buf  []byte
}

// NewReader returns a reader for records of the given size, RecordSize32
// or RecordSize64.
func NewReader(r io.Reader, recordSize int) (*Reader, error) {
	if recordSize != RecordSize32 && recordSize != RecordSize64 {
		return nil, fmt.Errorf("%w: %d", ErrRecordSize, recordSize)
	}
	return &Reader{
		r:    r,
		size: recordSize,
		buf:  make([]byte, recordSize*MaxBatch),
	}, nil
}

// ReadBatch performs one read and decodes the records it returned. Key
// events become Button events, absolute axis events become Axis events,
// everything else (sync, misc) is skipped. A trailing partial record is
// reported as ErrShortRecord together with the events decoded before it.
func (r *Reader) ReadBatch() ([]Event, error) {
	n, err := r.r.Read(r.buf)
	events := decodeRecords(r.buf[:n-n%r.size], r.size)
	if err != nil {
		return events, err
	}
	if n%r.size != 0 {
		return events, fmt.Errorf("%w: %d trailing bytes", ErrShortRecord, n%r.size)
	}
	return events, nil
}

func decodeRecords(b []byte, size int) []Event {
	var events []Event
	for off := 0; off+size <= len(b); off += size {
		rec := b[off : off+size]
		typ := binary.LittleEndian.Uint16(rec[size-8:])
		ev := Event{
			Code:  binary.LittleEndian.Uint16(rec[size-6:]),
			Value: int32(binary.LittleEndian.Uint32(rec[size-4:])),
		}
		switch typ {
		case evKey:
			ev.Kind = Button
		case evAbs:
			ev.Kind = Axis
		default:
			continue
		}
		events = append(events, ev)
	}
	return events
}

// EncodeRecord builds one evdev record with a zero timestamp. It is the
// inverse of the decoding done by Reader.
func EncodeRecord(size int, kind Kind, code uint16, value int32) []byte {
	rec := make([]byte, size)
	typ := uint16(0)
	switch kind {
	case Button:
		typ = evKey
	case Axis:
		typ = evAbs
	}
	binary.LittleEndian.PutUint16(rec[size-8:], typ)
	binary.LittleEndian.PutUint16(rec[size-6:], code)
	binary.LittleEndian.PutUint32(rec[size-4:], uint32(value))
	return rec
}
