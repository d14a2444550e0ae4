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

package periph

import "github.com/radboot/radboot/regs"

// Offsets are relative to the NVIC base at 0xE000E100.
const (
	nvicIser = 0x000
	nvicIcer = 0x080
	nvicIspr = 0x100
	nvicIcpr = 0x180

	// NVICBase is the architectural address of the NVIC ISER0 register.
	NVICBase = 0xE000E100
	// NVICMaxLines is the largest number of lines ARMv8-M allows.
	NVICMaxLines = 496
)

// NVIC is the nested vectored interrupt controller.
type NVIC struct {
	Base  uint32
	Lines uint32

	bus regs.Bus
}

// NewNVIC returns the NVIC at base implementing the given number of lines.
func NewNVIC(b regs.Bus, base, lines uint32) *NVIC {
	if lines > NVICMaxLines {
		lines = NVICMaxLines
	}
	return &NVIC{Base: base, Lines: lines, bus: b}
}

// Words returns the number of 32-line register words in use.
func (n *NVIC) Words() uint32 {
	return (n.Lines + 31) / 32
}

// ISER returns the set-enable register for word i.
func (n *NVIC) ISER(i uint32) regs.Register { return regs.Reg(n.bus, n.Base+nvicIser+4*i) }

// ICER returns the clear-enable register for word i.
func (n *NVIC) ICER(i uint32) regs.Register { return regs.Reg(n.bus, n.Base+nvicIcer+4*i) }

// ISPR returns the set-pending register for word i.
func (n *NVIC) ISPR(i uint32) regs.Register { return regs.Reg(n.bus, n.Base+nvicIspr+4*i) }

// ICPR returns the clear-pending register for word i.
func (n *NVIC) ICPR(i uint32) regs.Register { return regs.Reg(n.bus, n.Base+nvicIcpr+4*i) }

// DisableIRQ disables a single line. Lines the NVIC doesn't implement are
// ignored.
func (n *NVIC) DisableIRQ(irq uint32) {
	if irq >= n.Lines {
		return
	}
	n.ICER(irq / 32).Set(1 << (irq % 32))
}

// ClearPendingIRQ clears a single line's pending state. Lines the NVIC
// doesn't implement are ignored.
func (n *NVIC) ClearPendingIRQ(irq uint32) {
	if irq >= n.Lines {
		return
	}
	n.ICPR(irq / 32).Set(1 << (irq % 32))
}

// DisableAll disables and un-pends every line.
func (n *NVIC) DisableAll() {
	for i := uint32(0); i < n.Words(); i++ {
		n.ICER(i).Set(regs.AllBits)
	}
	for i := uint32(0); i < n.Words(); i++ {
		n.ICPR(i).Set(regs.AllBits)
	}
}
