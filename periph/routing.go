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

// Both generations of the event routing fabric, PPI and DPPIC, expose the
// same channel enable registers.
const (
	chen    = 0x500
	chenset = 0x504
	chenclr = 0x508
)

// Fabric is a PPI or DPPI controller.
type Fabric struct {
	Base uint32
	// Distributed is true for a DPPIC, whose peripherals route events
	// through their own SUBSCRIBE and PUBLISH registers.
	Distributed bool

	Chen    regs.Register
	ChenSet regs.Register
	ChenClr regs.Register
}

// NewPPI returns the legacy PPI block at base.
func NewPPI(b regs.Bus, base uint32) *Fabric {
	return newFabric(b, base, false)
}

// NewDPPIC returns the distributed PPI controller at base.
func NewDPPIC(b regs.Bus, base uint32) *Fabric {
	return newFabric(b, base, true)
}

func newFabric(b regs.Bus, base uint32, distributed bool) *Fabric {
	return &Fabric{
		Base:        base,
		Distributed: distributed,
		Chen:        regs.Reg(b, base+chen),
		ChenSet:     regs.Reg(b, base+chenset),
		ChenClr:     regs.Reg(b, base+chenclr),
	}
}

// DisableAllChannels disables every channel.
func (f *Fabric) DisableAllChannels() {
	f.ChenClr.Set(regs.AllBits)
}
