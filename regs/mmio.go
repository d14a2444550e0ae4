// Copyright 2026 The radboot Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package regs

import (
	"sync/atomic"
	"unsafe"
)

// MMIO is a Bus which dereferences physical addresses directly.
// It is only meaningful on bare-metal targets where the address space is
// identity mapped.
type MMIO struct{}

var _ Bus = MMIO{}

// Read32 loads the word at addr. The atomic load keeps the compiler from
// caching or eliding the access.
func (MMIO) Read32(addr uint32) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(uintptr(addr))))
}

// Write32 stores v at addr.
func (MMIO) Write32(addr uint32, v uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(uintptr(addr))), v)
}
