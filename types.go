// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dsruntime

// PageSize is the process-wide memory page size. Defaults to 4 KiB;
// overridden at process start by platform.Init once the real page size
// is known. memslot, ring and the block allocator align by the
// Platform's own PageSize, not by this variable.
var PageSize uintptr = 4096

// SetPageSize updates the package-level page size used for allocations.
func SetPageSize(size int) {
	PageSize = uintptr(size)
}

// NoCopy is a sentinel embedded in types that must not be copied after
// first use (lock-free head words, arena/pool state). It implements
// sync.Locker purely so `go vet -copylocks` flags accidental copies.
type NoCopy struct{}

func (*NoCopy) Lock()   {}
func (*NoCopy) Unlock() {}
