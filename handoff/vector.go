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

package handoff

import (
	"errors"
	"fmt"

	"github.com/radboot/radboot/regs"
)

var (
	// ErrNotThumb is returned for a reset vector without the Thumb bit.
	ErrNotThumb = errors.New("reset vector is not a Thumb address")
	// ErrNoStack is returned for a zero initial stack pointer.
	ErrNoStack = errors.New("initial stack pointer is zero")
	// ErrStackAlignment is returned for a stack pointer which isn't 8-byte aligned.
	ErrStackAlignment = errors.New("initial stack pointer is not 8-byte aligned")
)

// VectorTable is the head of the next image's vector table.
type VectorTable struct {
	InitialSP   uint32
	ResetVector uint32
}

// ReadVectorTable reads the first two words of the vector table at addr.
func ReadVectorTable(b regs.Bus, addr uint32) VectorTable {
	return VectorTable{
		InitialSP:   regs.Reg(b, addr).Get(),
		ResetVector: regs.Reg(b, addr+4).Get(),
	}
}

// Entry returns the address execution lands on.
func (v VectorTable) Entry() uint32 {
	return v.ResetVector &^ 1
}

// Validate checks the table describes something which could be started.
// Nothing past the vector table is inspected.
func (v VectorTable) Validate() error {
	var errs []error
	if v.ResetVector&1 == 0 {
		errs = append(errs, fmt.Errorf("%w: 0x%08x", ErrNotThumb, v.ResetVector))
	}
	switch {
	case v.InitialSP == 0:
		errs = append(errs, ErrNoStack)
	case v.InitialSP%8 != 0:
		errs = append(errs, fmt.Errorf("%w: 0x%08x", ErrStackAlignment, v.InitialSP))
	}
	return errors.Join(errs...)
}

func (v VectorTable) String() string {
	return fmt.Sprintf("{SP: 0x%08x, reset: 0x%08x}", v.InitialSP, v.ResetVector)
}

// ImageAddress returns the address of an image placed at offset within the
// storage region starting at base.
func ImageAddress(base, offset uint32) uint32 {
	return base + offset
}
