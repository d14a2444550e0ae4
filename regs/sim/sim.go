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

// Package sim provides an in-memory regs.Bus for tests and the emulator.
//
// Unmapped addresses read as zero. Hardware semantics such as set/clear
// aliases, write-1-to-clear flags and self-clearing bits are installed as
// per-address hooks by whoever builds the simulated device.
package sim

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/radboot/radboot/regs"
)

// Op identifies the kind of a recorded Access.
type Op int

const (
	OpRead Op = iota
	OpWrite
	OpMark
)

func (o Op) String() string {
	switch o {
	case OpRead:
		return "R"
	case OpWrite:
		return "W"
	case OpMark:
		return "M"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Access is a single entry in the bus trace.
type Access struct {
	Op    Op
	Addr  uint32
	Value uint32
	// Label is only set for OpMark entries.
	Label string
}

func (a Access) String() string {
	if a.Op == OpMark {
		return fmt.Sprintf("M %s", a.Label)
	}
	return fmt.Sprintf("%v 0x%08x=0x%08x", a.Op, a.Addr, a.Value)
}

// WriteFunc handles a write of v to addr in place of the plain store.
type WriteFunc func(addr, v uint32)

// ReadFunc produces the value for a read of addr in place of the plain load.
type ReadFunc func(addr uint32) uint32

// Bus is a simulated register space.
// It is safe for concurrent use; hooks are invoked without the lock held so
// they may call Peek and Poke.
type Bus struct {
	mu      sync.Mutex
	mem     map[uint32]uint32
	writes  map[uint32]WriteFunc
	reads   map[uint32]ReadFunc
	trace   []Access
	tracing bool
}

var _ regs.Bus = &Bus{}

// New returns an empty bus with tracing enabled.
func New() *Bus {
	return &Bus{
		mem:     make(map[uint32]uint32),
		writes:  make(map[uint32]WriteFunc),
		reads:   make(map[uint32]ReadFunc),
		tracing: true,
	}
}

// Read32 implements regs.Bus.
func (b *Bus) Read32(addr uint32) uint32 {
	b.mu.Lock()
	fn := b.reads[addr]
	v := b.mem[addr]
	b.mu.Unlock()

	if fn != nil {
		v = fn(addr)
	}

	b.mu.Lock()
	if b.tracing {
		b.trace = append(b.trace, Access{Op: OpRead, Addr: addr, Value: v})
	}
	b.mu.Unlock()
	return v
}

// Write32 implements regs.Bus.
func (b *Bus) Write32(addr uint32, v uint32) {
	b.mu.Lock()
	if b.tracing {
		b.trace = append(b.trace, Access{Op: OpWrite, Addr: addr, Value: v})
	}
	fn := b.writes[addr]
	if fn == nil {
		b.mem[addr] = v
	}
	b.mu.Unlock()

	if fn != nil {
		fn(addr, v)
	}
}

// Peek returns the stored value at addr, bypassing hooks and the trace.
func (b *Bus) Peek(addr uint32) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mem[addr]
}

// Poke stores v at addr, bypassing hooks and the trace.
func (b *Bus) Poke(addr uint32, v uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mem[addr] = v
}

// OnWrite installs fn as the write handler for addr.
func (b *Bus) OnWrite(addr uint32, fn WriteFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes[addr] = fn
}

// OnRead installs fn as the read handler for addr.
func (b *Bus) OnRead(addr uint32, fn ReadFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads[addr] = fn
}

// SetClear models a register whose state lives at value and which is
// modified through a write-1-to-set alias at set and a write-1-to-clear
// alias at clr. Reads of either alias return the state.
// value may equal set.
func (b *Bus) SetClear(value, set, clr uint32) {
	b.OnWrite(set, func(_, v uint32) { b.Poke(value, b.Peek(value)|v) })
	b.OnWrite(clr, func(_, v uint32) { b.Poke(value, b.Peek(value)&^v) })
	state := func(uint32) uint32 { return b.Peek(value) }
	if set != value {
		b.OnRead(set, state)
	}
	b.OnRead(clr, state)
}

// WriteOneToClear models a register where writing 1 to a bit clears it.
func (b *Bus) WriteOneToClear(addr uint32) {
	b.OnWrite(addr, func(a, v uint32) { b.Poke(a, b.Peek(a)&^v) })
}

// ReadOnly makes writes to addr ignored.
func (b *Bus) ReadOnly(addr uint32) {
	b.OnWrite(addr, func(uint32, uint32) {})
}

// Load copies data into the bus as little-endian words starting at addr.
// A trailing partial word is zero padded.
func (b *Bus) Load(addr uint32, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for off := 0; off < len(data); off += 4 {
		var w [4]byte
		copy(w[:], data[off:])
		b.mem[addr+uint32(off)] = binary.LittleEndian.Uint32(w[:])
	}
}

// Mark appends a label to the trace, so that events outside the bus can be
// ordered against register accesses.
func (b *Bus) Mark(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tracing {
		b.trace = append(b.trace, Access{Op: OpMark, Label: label})
	}
}

// SetTracing turns trace recording on or off.
func (b *Bus) SetTracing(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tracing = on
}

// Trace returns a copy of the trace recorded so far.
func (b *Bus) Trace() []Access {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Access(nil), b.trace...)
}

// ResetTrace discards the recorded trace.
func (b *Bus) ResetTrace() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trace = nil
}

// Snapshot returns a copy of all stored register values.
func (b *Bus) Snapshot() map[uint32]uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := make(map[uint32]uint32, len(b.mem))
	for k, v := range b.mem {
		s[k] = v
	}
	return s
}

// Writes returns the addresses written in trace order, filtered to [lo, hi).
func Writes(trace []Access, lo, hi uint32) []uint32 {
	var r []uint32
	for _, a := range trace {
		if a.Op == OpWrite && a.Addr >= lo && a.Addr < hi {
			r = append(r, a.Addr)
		}
	}
	return r
}

// FirstWrite returns the trace index of the first write into [lo, hi), or -1.
func FirstWrite(trace []Access, lo, hi uint32) int {
	for i, a := range trace {
		if a.Op == OpWrite && a.Addr >= lo && a.Addr < hi {
			return i
		}
	}
	return -1
}

// LastWrite returns the trace index of the last write into [lo, hi), or -1.
func LastWrite(trace []Access, lo, hi uint32) int {
	for i := len(trace) - 1; i >= 0; i-- {
		a := trace[i]
		if a.Op == OpWrite && a.Addr >= lo && a.Addr < hi {
			return i
		}
	}
	return -1
}

// MarkIndex returns the trace index of the first mark with the given label, or -1.
func MarkIndex(trace []Access, label string) int {
	for i, a := range trace {
		if a.Op == OpMark && a.Label == label {
			return i
		}
	}
	return -1
}
