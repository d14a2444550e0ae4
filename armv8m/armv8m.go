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

// Package armv8m implements the Cortex-M system control steps of a handoff:
// cache maintenance, MPU teardown, stack limit reset and the final jump.
//
// Memory-mapped system registers are accessed through a regs.Bus so the
// logic can be exercised on a host. The instructions which have no
// memory-mapped form are delegated to a Special.
package armv8m

import (
	"github.com/golang/glog"
	"github.com/radboot/radboot/regs"
)

// System control block and MPU registers.
const (
	CCR     = 0xE000ED14
	MPUType = 0xE000ED90
	MPUCtrl = 0xE000ED94
	MPURnr  = 0xE000ED98
	MPURbar = 0xE000ED9C
	MPURlar = 0xE000EDA0
	CLIDR   = 0xE000ED78
	CCSIDR  = 0xE000ED80
	CSSELR  = 0xE000ED84
	ICIALLU = 0xE000EF50
	DCCISW  = 0xE000EF74
)

// CCR bits.
const (
	CCRDC = 1 << 16
	CCRIC = 1 << 17
)

// Special provides the operations which need dedicated instructions.
type Special interface {
	DSB()
	ISB()
	SetPSPLIM(v uint32)
	SetMSPLIM(v uint32)
	// Jump loads MSP with sp, clears CONTROL, synchronises the pipeline
	// and branches to pc. It does not return.
	Jump(sp, pc uint32)
}

// Core drives the system control block of a single Cortex-M33 class core.
type Core struct {
	bus     regs.Bus
	special Special

	// HasStackLimits is set on cores implementing PSPLIM and MSPLIM.
	HasStackLimits bool
}

// New returns a Core using b for memory-mapped system registers.
func New(b regs.Bus, s Special, hasStackLimits bool) *Core {
	return &Core{bus: b, special: s, HasStackLimits: hasStackLimits}
}

// FlushICache invalidates the whole instruction cache.
func (c *Core) FlushICache() {
	c.special.DSB()
	regs.Reg(c.bus, ICIALLU).Set(0)
	c.special.DSB()
	c.special.ISB()
}

// FlushDCache cleans and invalidates the whole data cache by set/way.
func (c *Core) FlushDCache() {
	g, ok := c.dcacheGeometry()
	if !ok {
		glog.V(1).Info("armv8m: no data cache, skipping flush")
		return
	}
	c.special.DSB()
	sw := regs.Reg(c.bus, DCCISW)
	for set := uint32(0); set < g.sets; set++ {
		for way := uint32(0); way < g.ways; way++ {
			sw.Set(g.setWay(set, way))
		}
	}
	c.special.DSB()
	c.special.ISB()
}

// DisableICache turns the instruction cache off.
func (c *Core) DisableICache() {
	c.special.DSB()
	c.special.ISB()
	regs.Reg(c.bus, CCR).ClearBits(CCRIC)
	c.special.DSB()
	c.special.ISB()
	regs.Reg(c.bus, ICIALLU).Set(0)
	c.special.DSB()
	c.special.ISB()
}

// DisableDCache turns the data cache off and writes back anything which
// was dirtied while it was being disabled.
func (c *Core) DisableDCache() {
	c.special.DSB()
	regs.Reg(c.bus, CCR).ClearBits(CCRDC)
	c.special.DSB()
	c.special.ISB()
	c.FlushDCache()
}

// ClearMPU disables the MPU and zeroes every region.
func (c *Core) ClearMPU() {
	c.special.DSB()
	regs.Reg(c.bus, MPUCtrl).Set(0)
	n := MPURegions(c.bus)
	rnr, rbar, rlar := regs.Reg(c.bus, MPURnr), regs.Reg(c.bus, MPURbar), regs.Reg(c.bus, MPURlar)
	for i := uint32(0); i < n; i++ {
		rnr.Set(i)
		rbar.Set(0)
		rlar.Set(0)
	}
	c.special.DSB()
	c.special.ISB()
	glog.V(1).Infof("armv8m: cleared %d MPU regions", n)
}

// ResetStackLimits zeroes PSPLIM and MSPLIM, reporting false if the core
// doesn't have them.
func (c *Core) ResetStackLimits() bool {
	if !c.HasStackLimits {
		return false
	}
	c.special.SetPSPLIM(0)
	c.special.SetMSPLIM(0)
	return true
}

// Jump transfers control to pc with the main stack at sp.
func (c *Core) Jump(sp, pc uint32) {
	c.special.Jump(sp, pc)
}

// MPURegions returns the number of regions the MPU implements.
func MPURegions(b regs.Bus) uint32 {
	return (regs.Reg(b, MPUType).Get() >> 8) & 0xFF
}

type geometry struct {
	sets, ways uint32
	lineShift  uint32
	wayShift   uint32
}

func (g geometry) setWay(set, way uint32) uint32 {
	v := set << g.lineShift
	if g.ways > 1 {
		v |= way << g.wayShift
	}
	return v
}

// dcacheGeometry selects the level 1 data cache and decodes its size.
func (c *Core) dcacheGeometry() (geometry, bool) {
	if ctype := regs.Reg(c.bus, CLIDR).Get() & 0x7; ctype < 2 {
		return geometry{}, false
	}
	regs.Reg(c.bus, CSSELR).Set(0)
	c.special.DSB()
	ccsidr := regs.Reg(c.bus, CCSIDR).Get()
	g := geometry{
		sets:      (ccsidr>>13)&0x7FFF + 1,
		ways:      (ccsidr>>3)&0x3FF + 1,
		lineShift: ccsidr&0x7 + 4,
	}
	g.wayShift = 32 - log2Ceil(g.ways)
	return g, true
}

func log2Ceil(n uint32) uint32 {
	var r uint32
	for (uint32(1) << r) < n {
		r++
	}
	return r
}
