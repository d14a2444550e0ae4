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

package sim

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/radboot/radboot/regs"
)

func TestSetClear(t *testing.T) {
	const (
		set = 0x1304
		clr = 0x1308
	)
	for _, test := range []struct {
		name  string
		write func(b *Bus)
		want  uint32
	}{
		{
			name:  "set",
			write: func(b *Bus) { b.Write32(set, 0x5) },
			want:  0x5,
		}, {
			name: "set then clear some",
			write: func(b *Bus) {
				b.Write32(set, 0xF0)
				b.Write32(clr, 0x30)
			},
			want: 0xC0,
		}, {
			name: "clear all bits",
			write: func(b *Bus) {
				b.Write32(set, 0x80000001)
				b.Write32(clr, regs.AllBits)
			},
			want: 0,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			b := New()
			b.SetClear(set, set, clr)
			test.write(b)
			if got := b.Read32(set); got != test.want {
				t.Errorf("Read32(set) = 0x%x, want 0x%x", got, test.want)
			}
			if got := b.Read32(clr); got != test.want {
				t.Errorf("Read32(clr) = 0x%x, want 0x%x", got, test.want)
			}
		})
	}
}

func TestWriteOneToClear(t *testing.T) {
	b := New()
	const latch = 0x51C
	b.WriteOneToClear(latch)
	b.Poke(latch, 0x0000_0F0F)
	b.Write32(latch, 0x0000_000F)
	if got, want := b.Read32(latch), uint32(0x0F00); got != want {
		t.Fatalf("partial clear: got 0x%x, want 0x%x", got, want)
	}
	b.Write32(latch, regs.AllBits)
	if got := b.Read32(latch); got != 0 {
		t.Fatalf("full clear: got 0x%x, want 0", got)
	}
}

func TestLoad(t *testing.T) {
	b := New()
	b.Load(0x1000, []byte{0x00, 0x00, 0x04, 0x20, 0x01, 0x10, 0x0A, 0x00, 0xAA})
	got := []uint32{b.Read32(0x1000), b.Read32(0x1004), b.Read32(0x1008)}
	want := []uint32{0x20040000, 0x000A1001, 0xAA}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Load diff (-want +got):\n%s", diff)
	}
}

func TestTrace(t *testing.T) {
	b := New()
	b.Write32(0x10, 1)
	b.Mark("checkpoint")
	b.Read32(0x10)
	b.Poke(0x20, 2)
	_ = b.Peek(0x20)

	want := []Access{
		{Op: OpWrite, Addr: 0x10, Value: 1},
		{Op: OpMark, Label: "checkpoint"},
		{Op: OpRead, Addr: 0x10, Value: 1},
	}
	if diff := cmp.Diff(want, b.Trace()); diff != "" {
		t.Fatalf("trace diff (-want +got):\n%s", diff)
	}
	if got, want := MarkIndex(b.Trace(), "checkpoint"), 1; got != want {
		t.Errorf("MarkIndex = %d, want %d", got, want)
	}
	if got, want := FirstWrite(b.Trace(), 0x0, 0x100), 0; got != want {
		t.Errorf("FirstWrite = %d, want %d", got, want)
	}

	b.ResetTrace()
	if got := len(b.Trace()); got != 0 {
		t.Errorf("trace has %d entries after reset", got)
	}
}

func TestRegisterBits(t *testing.T) {
	b := New()
	r := regs.Reg(b, 0x40)
	r.Set(0x0F)
	r.SetBits(0x30)
	r.ClearBits(0x03)
	if got, want := r.Get(), uint32(0x3C); got != want {
		t.Fatalf("Get() = 0x%x, want 0x%x", got, want)
	}
	if !r.HasBits(0x0C) {
		t.Error("HasBits(0x0C) = false, want true")
	}
	if r.HasBits(0x03) {
		t.Error("HasBits(0x03) = true, want false")
	}
}

func TestFill(t *testing.T) {
	b := New()
	for a := uint32(0x80); a < 0x100; a += 4 {
		b.Poke(a, 0xDEAD)
	}
	b.Poke(0x100, 0xBEEF)
	regs.Fill(b, 0x80, 0x80, 0)
	for a := uint32(0x80); a < 0x100; a += 4 {
		if got := b.Peek(a); got != 0 {
			t.Errorf("0x%x = 0x%x after Fill, want 0", a, got)
		}
	}
	if got := b.Peek(0x100); got != 0xBEEF {
		t.Errorf("Fill overran its block: 0x100 = 0x%x", got)
	}
}
