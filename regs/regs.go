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

// Package regs provides access to 32-bit memory-mapped control and status
// registers.
//
// All peripheral code in this module talks to hardware through a Bus, which
// lets the same teardown logic run against real MMIO on the target, against
// /dev/mem on a Linux host, or against the in-memory simulation in regs/sim.
package regs

// AllBits is the "set every bit" mask used to clear all sources of a
// set/clear register pair. Writing bits which are reserved on a particular
// variant is defined to have no effect.
const AllBits = 0xFFFFFFFF

// Bus reads and writes 32-bit registers at absolute addresses.
//
// Implementations must perform every access; reads and writes must not be
// merged, reordered or elided.
type Bus interface {
	Read32(addr uint32) uint32
	Write32(addr uint32, v uint32)
}

// Register is a single 32-bit register on a Bus.
type Register struct {
	bus  Bus
	addr uint32
}

// Reg returns the register at addr on b.
func Reg(b Bus, addr uint32) Register {
	return Register{bus: b, addr: addr}
}

// Addr returns the absolute address of the register.
func (r Register) Addr() uint32 {
	return r.addr
}

// Get reads the register.
func (r Register) Get() uint32 {
	return r.bus.Read32(r.addr)
}

// Set writes v to the register.
func (r Register) Set(v uint32) {
	r.bus.Write32(r.addr, v)
}

// SetBits performs a read-modify-write setting the bits in m.
func (r Register) SetBits(m uint32) {
	r.Set(r.Get() | m)
}

// ClearBits performs a read-modify-write clearing the bits in m.
func (r Register) ClearBits(m uint32) {
	r.Set(r.Get() &^ m)
}

// HasBits reports whether all of the bits in m are set.
func (r Register) HasBits(m uint32) bool {
	return r.Get()&m == m
}

// Trigger writes 1 to a task register.
func (r Register) Trigger() {
	r.Set(1)
}

// Fill writes v to every word in [addr, addr+size).
// size is in bytes and is rounded down to a whole number of words.
func Fill(b Bus, addr, size, v uint32) {
	for off := uint32(0); off+4 <= size; off += 4 {
		b.Write32(addr+off, v)
	}
}
