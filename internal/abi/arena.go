// Package abi exposes the distiller across a foreign-call boundary using
// opaque handles instead of raw pointers.
//
// A caller allocates an input buffer, fills it with encoded image bytes and
// hands it to Process. Process consumes the input handle and returns a new
// handle holding either packed RGB triplets or an error message. Every handle
// returned to the caller must be released with Free exactly once.
package abi

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/distil/internal/distil"
)

// NewLogger returns the diagnostic sink for an embedded distiller. Only
// failures are written, since the host reads w as an error stream.
func NewLogger(w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "distil",
		Output: w,
		Level:  hclog.Error,
	})
}

// Handle identifies a buffer owned by an Arena. Zero is never a valid handle.
type Handle uint32

// Status reports the outcome of an operation. Negative values are failures.
type Status int32

const (
	StatusOK              Status = 0
	StatusInvalidHandle   Status = -1
	StatusInvalidArgument Status = -2
	StatusUnsupported     Status = -3
	StatusDecode          Status = -4
	StatusUninteresting   Status = -5
	StatusInternal        Status = -6
)

// String returns a short name for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInvalidHandle:
		return "invalid handle"
	case StatusInvalidArgument:
		return "invalid argument"
	case StatusUnsupported:
		return "unsupported format"
	case StatusDecode:
		return "decode error"
	case StatusUninteresting:
		return "uninteresting image"
	case StatusInternal:
		return "internal error"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// ErrInvalidHandle is returned for handles that were never issued or were already freed.
var ErrInvalidHandle = errors.New("invalid or released handle")

type slot struct {
	buf    []byte
	status Status
}

// Arena owns every buffer handed across the boundary.
type Arena struct {
	mu        sync.Mutex
	next      Handle
	slots     map[Handle]*slot
	distiller *distil.Distiller
}

// NewArena creates an Arena that processes images with d.
func NewArena(d *distil.Distiller) *Arena {
	return &Arena{slots: make(map[Handle]*slot), distiller: d}
}

// Alloc reserves a zeroed buffer of size bytes and returns its handle.
// It returns 0 when size is negative.
func (a *Arena) Alloc(size int) Handle {
	if size < 0 {
		return 0
	}
	return a.put(&slot{buf: make([]byte, size)})
}

// Buffer returns the bytes behind h, or nil for an unknown handle.
// The slice stays valid until h is freed.
func (a *Arena) Buffer(h Handle) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.slots[h]; ok {
		return s.buf
	}
	return nil
}

// Status returns the outcome recorded for h.
func (a *Arena) Status(h Handle) Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.slots[h]; ok {
		return s.status
	}
	return StatusInvalidHandle
}

// Process distils the first length bytes of the input buffer h, keeping at
// most paletteSize colours (paletteSize <= 0 keeps all). The input handle is
// released whatever the outcome.
//
// The returned handle holds packed RGB triplets on success, or a readable
// error message otherwise; Status reports which. It must be freed by the caller.
// A zero handle means the input handle itself was invalid.
func (a *Arena) Process(h Handle, length, paletteSize int) (Handle, Status) {
	input, err := a.take(h)
	if err != nil {
		return 0, StatusInvalidHandle
	}
	if length < 0 || length > len(input) {
		return a.fail(StatusInvalidArgument, fmt.Errorf("length %d outside buffer of %d bytes", length, len(input)))
	}

	result, err := a.distiller.DistilBytes(input[:length])
	if err != nil {
		return a.fail(statusFor(err), err)
	}

	result = result.Truncate(paletteSize)
	packed := make([]byte, 0, result.Len()*3)
	for _, c := range result.Colors {
		packed = append(packed, c.R, c.G, c.B)
	}
	return a.put(&slot{buf: packed, status: StatusOK}), StatusOK
}

// Result returns the packed RGB triplets behind a successful result handle.
func (a *Arena) Result(h Handle) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.slots[h]; ok && s.status == StatusOK {
		return s.buf
	}
	return nil
}

// LastError returns the error message behind a failed result handle.
func (a *Arena) LastError(h Handle) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.slots[h]; ok && s.status != StatusOK {
		return string(s.buf)
	}
	return ""
}

// Free releases h. Releasing a handle twice returns ErrInvalidHandle.
func (a *Arena) Free(h Handle) error {
	_, err := a.take(h)
	return err
}

// Live returns the number of handles not yet freed.
func (a *Arena) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.slots)
}

func (a *Arena) put(s *slot) Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	for {
		a.next++
		if _, used := a.slots[a.next]; a.next != 0 && !used {
			break
		}
	}
	a.slots[a.next] = s
	return a.next
}

func (a *Arena) take(h Handle) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.slots[h]
	if !ok {
		return nil, fmt.Errorf("handle %d: %w", h, ErrInvalidHandle)
	}
	delete(a.slots, h)
	return s.buf, nil
}

func (a *Arena) fail(status Status, err error) (Handle, Status) {
	return a.put(&slot{buf: []byte(err.Error()), status: status}), status
}

func statusFor(err error) Status {
	var decodeErr *distil.DecodeError
	switch {
	case errors.Is(err, distil.ErrUnsupportedFormat):
		return StatusUnsupported
	case errors.Is(err, distil.ErrUninteresting):
		return StatusUninteresting
	case errors.As(err, &decodeErr):
		return StatusDecode
	default:
		return StatusInternal
	}
}
