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

// RTC register offsets.
const (
	rtcTasksStart = 0x000
	rtcTasksStop  = 0x004
	rtcTasksClear = 0x008
	rtcIntenset   = 0x304
	rtcIntenclr   = 0x308
	rtcEvten      = 0x340
	rtcEvtenset   = 0x344
	rtcEvtenclr   = 0x348
	rtcCounter    = 0x504
)

// RTC is a real-time counter instance.
type RTC struct {
	Base uint32

	TasksStart regs.Register
	TasksStop  regs.Register
	TasksClear regs.Register
	IntenSet   regs.Register
	IntenClr   regs.Register
	Evten      regs.Register
	EvtenSet   regs.Register
	EvtenClr   regs.Register
	Counter    regs.Register
}

// NewRTC returns the RTC block at base.
func NewRTC(b regs.Bus, base uint32) *RTC {
	return &RTC{
		Base:       base,
		TasksStart: regs.Reg(b, base+rtcTasksStart),
		TasksStop:  regs.Reg(b, base+rtcTasksStop),
		TasksClear: regs.Reg(b, base+rtcTasksClear),
		IntenSet:   regs.Reg(b, base+rtcIntenset),
		IntenClr:   regs.Reg(b, base+rtcIntenclr),
		Evten:      regs.Reg(b, base+rtcEvten),
		EvtenSet:   regs.Reg(b, base+rtcEvtenset),
		EvtenClr:   regs.Reg(b, base+rtcEvtenclr),
		Counter:    regs.Reg(b, base+rtcCounter),
	}
}

// Stop triggers the STOP task.
func (r *RTC) Stop() {
	r.TasksStop.Trigger()
}

// DisableEvents disables event routing for the sources in mask.
func (r *RTC) DisableEvents(mask uint32) {
	r.EvtenClr.Set(mask)
}

// DisableInterrupts disables the interrupt sources in mask.
func (r *RTC) DisableInterrupts(mask uint32) {
	r.IntenClr.Set(mask)
}
