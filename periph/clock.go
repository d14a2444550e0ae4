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

const (
	clockIntenset = 0x304
	clockIntenclr = 0x308
)

// Clock is the clock and oscillator controller.
type Clock struct {
	Base uint32

	IntenSet regs.Register
	IntenClr regs.Register
}

// NewClock returns the clock controller block at base.
func NewClock(b regs.Bus, base uint32) *Clock {
	return &Clock{
		Base:     base,
		IntenSet: regs.Reg(b, base+clockIntenset),
		IntenClr: regs.Reg(b, base+clockIntenclr),
	}
}

// DisableInterrupts disables the interrupt sources in mask.
func (c *Clock) DisableInterrupts(mask uint32) {
	c.IntenClr.Set(mask)
}
