// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DoubleMapping is two adjacent virtual views of one physical region:
// base[0:size] and base[size:2*size] both back the same pages, so a
// write that straddles the size boundary is visible as a single
// contiguous run through either view. Backs ring's wrap-free contract.
type DoubleMapping struct {
	fd   int
	Base []byte // len(Base) == 2*size, Base[:size] and Base[size:] alias the same pages
	Size int
}

// DoubleMap creates a double mapping of size bytes (rounded up to the
// page size) using a memfd-backed anonymous file: one ftruncate to
// size, then two adjacent MAP_FIXED|MAP_SHARED mappings of the same
// fd over a single reserved address range. This is the Linux
// double-mapping idiom the original's RingAlloc implements with two
// MAP_FIXED calls over an anonymous reservation; memfd additionally
// avoids leaving a visible tmpfs file behind.
func (p *Platform) DoubleMap(size int) (*DoubleMapping, error) {
	n := alignUp(size, int(p.pageSize))

	fd, err := unix.MemfdCreate("dsruntime-ring", 0)
	if err != nil {
		return nil, fmt.Errorf("platform: memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(n)); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("platform: ftruncate %d bytes: %w", n, err)
	}

	// Reserve 2n of contiguous address space so the two fixed
	// sub-mappings below are guaranteed adjacent.
	reservation, err := unix.Mmap(-1, 0, 2*n, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("platform: reserve %d bytes: %w", 2*n, err)
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(reservation)))

	if err := mmapFixed(fd, base, n); err != nil {
		_ = unix.Munmap(reservation)
		_ = unix.Close(fd)
		return nil, err
	}
	if err := mmapFixed(fd, base+uintptr(n), n); err != nil {
		_ = unix.Munmap(reservation)
		_ = unix.Close(fd)
		return nil, err
	}

	full := unsafe.Slice((*byte)(unsafe.Pointer(base)), 2*n)
	return &DoubleMapping{fd: fd, Base: full, Size: n}, nil
}

// mmapFixed re-maps fd's full extent at the given address, requiring
// the kernel to place it exactly there (MAP_FIXED) rather than
// treating addr as a hint.
func mmapFixed(fd int, addr uintptr, length int) error {
	_, _, errno := unix.Syscall6(
		unix.SYS_MMAP,
		addr,
		uintptr(length),
		uintptr(unix.PROT_READ|unix.PROT_WRITE),
		uintptr(unix.MAP_SHARED|unix.MAP_FIXED),
		uintptr(fd),
		0,
	)
	if errno != 0 {
		return fmt.Errorf("platform: mmap MAP_FIXED at %#x (%d bytes): %w", addr, length, errno)
	}
	return nil
}

// Close unmaps both views and closes the backing memfd.
func (d *DoubleMapping) Close() error {
	if d == nil || d.Base == nil {
		return nil
	}
	err := unix.Munmap(d.Base)
	if cerr := unix.Close(d.fd); err == nil {
		err = cerr
	}
	d.Base = nil
	return err
}
