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

// GRTC register offsets. Interrupt groups and compare channels are strided.
const (
	grtcTasksStart = 0x060
	grtcTasksStop  = 0x064
	grtcTasksClear = 0x068
	grtcIntenset   = 0x304
	grtcIntenclr   = 0x308
	grtcIntStride  = 0x10
	grtcMode       = 0x510
	grtcCcen       = 0x52C
	grtcCcStride   = 0x10

	// GRTCIntGroups is the number of INTEN groups, one per core domain.
	GRTCIntGroups = 4
	// GRTCMaxChannels is the largest number of compare channels.
	GRTCMaxChannels = 24

	GRTCModeAutoEn       = 1 << 0
	GRTCModeSysCounterEn = 1 << 1
)

// GRTC is the global real-time counter shared by all cores.
type GRTC struct {
	Base     uint32
	Channels uint32

	TasksStart regs.Register
	TasksStop  regs.Register
	TasksClear regs.Register
	Mode       regs.Register

	bus regs.Bus
}

// NewGRTC returns the GRTC block at base with the given number of compare
// channels.
func NewGRTC(b regs.Bus, base, channels uint32) *GRTC {
	if channels > GRTCMaxChannels {
		channels = GRTCMaxChannels
	}
	return &GRTC{
		Base:       base,
		Channels:   channels,
		TasksStart: regs.Reg(b, base+grtcTasksStart),
		TasksStop:  regs.Reg(b, base+grtcTasksStop),
		TasksClear: regs.Reg(b, base+grtcTasksClear),
		Mode:       regs.Reg(b, base+grtcMode),
		bus:        b,
	}
}

// IntenSet returns the interrupt set register of group n.
func (g *GRTC) IntenSet(n uint32) regs.Register {
	return regs.Reg(g.bus, g.Base+grtcIntenset+grtcIntStride*n)
}

// IntenClr returns the interrupt clear register of group n.
func (g *GRTC) IntenClr(n uint32) regs.Register {
	return regs.Reg(g.bus, g.Base+grtcIntenclr+grtcIntStride*n)
}

// CCEN returns the enable register of compare channel n.
func (g *GRTC) CCEN(n uint32) regs.Register {
	return regs.Reg(g.bus, g.Base+grtcCcen+grtcCcStride*n)
}

// Uninit stops the system counter, disables every interrupt group and
// disables every compare channel.
func (g *GRTC) Uninit() {
	g.TasksStop.Trigger()
	g.Mode.ClearBits(GRTCModeSysCounterEn)
	for i := uint32(0); i < GRTCIntGroups; i++ {
		g.IntenClr(i).Set(regs.AllBits)
	}
	for i := uint32(0); i < g.Channels; i++ {
		g.CCEN(i).Set(0)
	}
}
