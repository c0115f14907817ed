//go:build wasip1

// Command distil-wasm builds the distiller as a WebAssembly module.
//
// The host allocates an input buffer, writes encoded image bytes at
// buffer_ptr, then calls process. The returned handle refers either to packed
// RGB triplets or, when status is negative, to a UTF-8 error message. Both
// are read through buffer_ptr plus result_len or error_len, and must be
// released with free.
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o distil.wasm ./cmd/distil-wasm
package main

import (
	"os"
	"unsafe"

	"github.com/jmylchreest/distil/internal/abi"
	"github.com/jmylchreest/distil/internal/distil"
)

var arena = newArena()

func newArena() *abi.Arena {
	d, err := distil.New(distil.DefaultConfig(), nil, abi.NewLogger(os.Stderr))
	if err != nil {
		panic(err)
	}
	return abi.NewArena(d)
}

//go:wasmexport alloc
func alloc(size int32) uint32 {
	return uint32(arena.Alloc(int(size)))
}

//go:wasmexport buffer_ptr
func bufferPtr(h uint32) unsafe.Pointer {
	buf := arena.Buffer(abi.Handle(h))
	if len(buf) == 0 {
		return nil
	}
	return unsafe.Pointer(&buf[0])
}

//go:wasmexport process
func process(h uint32, length, paletteSize int32) uint32 {
	out, _ := arena.Process(abi.Handle(h), int(length), int(paletteSize))
	return uint32(out)
}

//go:wasmexport status
func status(h uint32) int32 {
	return int32(arena.Status(abi.Handle(h)))
}

//go:wasmexport result_len
func resultLen(h uint32) int32 {
	return int32(len(arena.Result(abi.Handle(h))))
}

//go:wasmexport error_len
func errorLen(h uint32) int32 {
	return int32(len(arena.LastError(abi.Handle(h))))
}

//go:wasmexport free
func free(h uint32) int32 {
	if err := arena.Free(abi.Handle(h)); err != nil {
		return int32(abi.StatusInvalidHandle)
	}
	return int32(abi.StatusOK)
}

func main() {}
