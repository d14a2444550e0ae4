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

package quiesce_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/radboot/radboot/internal/simsoc"
	"github.com/radboot/radboot/periph"
	"github.com/radboot/radboot/quiesce"
	"github.com/radboot/radboot/regs/sim"
)

const (
	rtcBase   = 0x40011000
	grtcBase  = 0x4009C000
	uarteBase = 0x40002000
	dppicBase = 0x40017000
	ppiBase   = 0x4001F000
	clockBase = 0x40000000
	usbBase   = 0x5F086000
	p0Base    = 0x50938000
	p1Base    = 0x50939000
	nvicBase  = periph.NVICBase
	uarteIRQ  = 37
	nvicLines = 64
)

func testTable() quiesce.Table {
	return quiesce.Table{
		SoC: "test",
		Peripherals: []quiesce.Descriptor{
			{Kind: quiesce.KindRTC, Name: "rtc", Base: rtcBase},
			{Kind: quiesce.KindUARTE, Name: "uarte", Base: uarteBase, IRQ: quiesce.IRQ(uarteIRQ)},
			{Kind: quiesce.KindPPI, Name: "ppi", Base: ppiBase},
			{Kind: quiesce.KindDPPIC, Name: "dppic", Base: dppicBase},
			{Kind: quiesce.KindClock, Name: "clock", Base: clockBase},
			{Kind: quiesce.KindUSBHS, Name: "usbhs", Base: usbBase},
			{Kind: quiesce.KindGPIO, Name: "p0", Base: p0Base, Port: 0},
			{Kind: quiesce.KindGPIO, Name: "p1", Base: p1Base, Port: 1, Pins: 16},
			{Kind: quiesce.KindNVIC, Name: "nvic", Base: nvicBase, Lines: nvicLines},
			{Kind: quiesce.KindGRTC, Name: "grtc", Base: grtcBase, Channels: 8},
		},
	}
}

func noSleep(time.Duration) {}

func newEngine(t *testing.T, soc *simsoc.SoC, opts quiesce.Options) *quiesce.Engine {
	t.Helper()
	if opts.Sleep == nil {
		opts.Sleep = noSleep
	}
	e, err := quiesce.New(soc.Bus, soc.Table, opts)
	if err != nil {
		t.Fatalf("quiesce.New: %v", err)
	}
	return e
}

func TestQuiesceAllCompleteness(t *testing.T) {
	soc := simsoc.New(testTable(), simsoc.Options{USBResetReads: 3})
	soc.Activate()
	e := newEngine(t, soc, quiesce.Options{})

	if len(e.Audit()) == 0 {
		t.Fatal("Audit of an active SoC found nothing")
	}
	e.QuiesceAll()

	if r := e.Audit(); len(r) != 0 {
		t.Fatalf("Audit after QuiesceAll: %v", r)
	}
	for _, name := range []string{"rtc", "grtc"} {
		if soc.RTCRunning(name) {
			t.Errorf("%s still running", name)
		}
	}
	for _, base := range []uint32{ppiBase, dppicBase} {
		if got := soc.Bus.Peek(base + 0x500); got != 0 {
			t.Errorf("CHEN at 0x%x = 0x%x, want 0", base, got)
		}
	}
	for a := uint32(uarteBase + 0x080); a < uarteBase+0x200; a += 4 {
		if a >= uarteBase+0x100 && a < uarteBase+0x180 {
			continue
		}
		if got := soc.Bus.Peek(a); got != 0 {
			t.Errorf("UARTE SUBSCRIBE/PUBLISH 0x%x = 0x%x, want 0", a, got)
		}
	}
	u := periph.NewUSBHS(soc.Bus, usbBase)
	if !u.Dctl.HasBits(periph.DctlSftDiscon) {
		t.Error("USB not soft disconnected")
	}
	if !u.CoreResetDone() {
		t.Error("USB core reset not complete")
	}
}

func TestQuiesceAllIdempotent(t *testing.T) {
	soc := simsoc.New(testTable(), simsoc.Options{USBResetReads: 2})
	soc.Activate()
	e := newEngine(t, soc, quiesce.Options{})

	e.QuiesceAll()
	first := soc.Bus.Snapshot()
	e.QuiesceAll()
	second := soc.Bus.Snapshot()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second QuiesceAll changed state (-first +second):\n%s", diff)
	}
}

func TestGPIOSweepTotal(t *testing.T) {
	soc := simsoc.New(testTable(), simsoc.Options{})
	soc.Activate()
	newEngine(t, soc, quiesce.Options{}).QuiesceAll()

	for _, bank := range []struct {
		base uint32
		pins uint32
	}{
		{base: p0Base, pins: 32},
		{base: p1Base, pins: 16},
	} {
		g := periph.NewGPIO(soc.Bus, bank.base, 0, bank.pins)
		for pin := uint32(0); pin < bank.pins; pin++ {
			if got := soc.Bus.Peek(g.PinCnf(pin).Addr()); got != periph.PinCnfDefault {
				t.Errorf("bank 0x%x pin %d: PIN_CNF = 0x%x, want 0x%x", bank.base, pin, got, periph.PinCnfDefault)
			}
		}
		if got := soc.Bus.Peek(g.Latch.Addr()); got != 0 {
			t.Errorf("bank 0x%x: LATCH = 0x%x, want 0", bank.base, got)
		}
	}
}

func TestSerialPins(t *testing.T) {
	for _, test := range []struct {
		name         string
		skip         bool
		wantDetached bool
	}{
		{name: "restore", wantDetached: true},
		{name: "skip", skip: true},
	} {
		t.Run(test.name, func(t *testing.T) {
			tb := testTable()
			tb.SkipSerialPinRestore = test.skip
			soc := simsoc.New(tb, simsoc.Options{})
			soc.Activate()
			u := periph.NewUARTE(soc.Bus, uarteBase)
			before := u.Pins()

			e := newEngine(t, soc, quiesce.Options{})
			e.QuiesceAll()

			want := before
			if test.wantDetached {
				want = [4]uint32{periph.PSELDisconnected, periph.PSELDisconnected, periph.PSELDisconnected, periph.PSELDisconnected}
			}
			if diff := cmp.Diff(want, u.Pins()); diff != "" {
				t.Errorf("PSEL diff (-want +got):\n%s", diff)
			}
			if r := e.Audit(); len(r) != 0 {
				t.Errorf("Audit: %v", r)
			}
		})
	}
}

func TestSerialIRQReleasedBeforeDisable(t *testing.T) {
	soc := simsoc.New(testTable(), simsoc.Options{})
	soc.Activate()
	newEngine(t, soc, quiesce.Options{}).QuiesceAll()

	tr := soc.Bus.Trace()
	icer := periph.NewNVIC(soc.Bus, nvicBase, nvicLines).ICER(uarteIRQ / 32)
	release := -1
	for i, a := range tr {
		if a.Op == sim.OpWrite && a.Addr == icer.Addr() && a.Value == 1<<(uarteIRQ%32) {
			release = i
			break
		}
	}
	if release < 0 {
		t.Fatal("UARTE interrupt line never disabled on its own")
	}
	disable := -1
	enable := periph.NewUARTE(soc.Bus, uarteBase).Enable.Addr()
	for i, a := range tr {
		if a.Op == sim.OpWrite && a.Addr == enable {
			disable = i
			break
		}
	}
	if disable < release {
		t.Errorf("UARTE disabled at %d, before its interrupt line was released at %d", disable, release)
	}
}

func TestPhaseOrder(t *testing.T) {
	base := testTable()
	// Serial pin restore and the serial IRQ write into the GPIO and NVIC
	// blocks, so leave them out to keep block ranges disjoint.
	base.SkipSerialPinRestore = true
	var shuffled []quiesce.Descriptor
	for i := len(base.Peripherals) - 1; i >= 0; i-- {
		d := base.Peripherals[i]
		d.IRQ = nil
		shuffled = append(shuffled, d)
	}
	base.Peripherals = shuffled

	soc := simsoc.New(base, simsoc.Options{})
	soc.Activate()
	e := newEngine(t, soc, quiesce.Options{})

	want := []string{"grtc", "rtc", "uarte", "dppic", "ppi", "clock", "usbhs", "p1", "p0", "nvic"}
	if diff := cmp.Diff(want, e.Names()); diff != "" {
		t.Fatalf("Names diff (-want +got):\n%s", diff)
	}

	e.QuiesceAll()
	tr := soc.Bus.Trace()
	blocks := map[string][2]uint32{
		"grtc":  {grtcBase, grtcBase + 0x1000},
		"rtc":   {rtcBase, rtcBase + 0x1000},
		"uarte": {uarteBase, uarteBase + 0x1000},
		"dppic": {dppicBase, dppicBase + 0x1000},
		"ppi":   {ppiBase, ppiBase + 0x1000},
		"clock": {clockBase, clockBase + 0x1000},
		"usbhs": {usbBase, usbBase + 0x1000},
		"p1":    {p1Base, p1Base + 0x1000},
		"p0":    {p0Base, p0Base + 0x1000},
		"nvic":  {nvicBase, nvicBase + 0x200},
	}
	for i := 1; i < len(want); i++ {
		prev, next := blocks[want[i-1]], blocks[want[i]]
		last := sim.LastWrite(tr, prev[0], prev[1])
		first := sim.FirstWrite(tr, next[0], next[1])
		if last < 0 || first < 0 {
			t.Fatalf("%s or %s never written", want[i-1], want[i])
		}
		if last > first {
			t.Errorf("%s written at %d after %s started at %d", want[i-1], last, want[i], first)
		}
	}
}

func TestGRTCUninit(t *testing.T) {
	soc := simsoc.New(testTable(), simsoc.Options{})
	soc.Activate()
	e := newEngine(t, soc, quiesce.Options{})
	e.QuiesceAll()

	g := periph.NewGRTC(soc.Bus, grtcBase, 8)
	if got, want := g.Mode.Get(), uint32(periph.GRTCModeAutoEn); got != want {
		t.Errorf("MODE = 0x%x, want 0x%x", got, want)
	}
	for i := uint32(0); i < periph.GRTCIntGroups; i++ {
		if got := g.IntenSet(i).Get(); got != 0 {
			t.Errorf("INTENSET%d = 0x%x, want 0", i, got)
		}
	}
	if got, want := len(sim.Writes(soc.Bus.Trace(), g.CCEN(0).Addr(), g.CCEN(8).Addr())), 8; got != want {
		t.Errorf("%d CCEN writes, want %d", got, want)
	}
	if got := sim.Writes(soc.Bus.Trace(), g.CCEN(8).Addr(), grtcBase+0x1000); len(got) != 0 {
		t.Errorf("wrote past the described channels: %x", got)
	}
}

func TestUSBBoundedWait(t *testing.T) {
	soc := simsoc.New(testTable(), simsoc.Options{USBResetStuck: true})
	soc.Activate()
	var slept []time.Duration
	const polls = 50
	e := newEngine(t, soc, quiesce.Options{
		USBResetPolls: polls,
		Sleep:         func(d time.Duration) { slept = append(slept, d) },
	})

	done := make(chan struct{})
	go func() {
		e.QuiesceAll()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("QuiesceAll did not return with a stuck USB core")
	}

	grstctl := periph.NewUSBHS(soc.Bus, usbBase).Grstctl.Addr()
	reads := 0
	for _, a := range soc.Bus.Trace() {
		if a.Op == sim.OpRead && a.Addr == grstctl {
			reads++
		}
	}
	// One read for the read-modify-write starting the reset, then the polls.
	if got, want := reads, polls+1; got != want {
		t.Errorf("GRSTCTL read %d times, want %d", got, want)
	}
	if diff := cmp.Diff([]time.Duration{200 * time.Microsecond}, slept); diff != "" {
		t.Errorf("settle sleeps diff (-want +got):\n%s", diff)
	}
	// Later phases still ran.
	if got := soc.Bus.Peek(periph.NewNVIC(soc.Bus, nvicBase, nvicLines).ISER(0).Addr()); got != 0 {
		t.Errorf("NVIC ISER0 = 0x%x after a stuck USB reset, want 0", got)
	}
}

func TestUSBUnpoweredUntouched(t *testing.T) {
	soc := simsoc.New(testTable(), simsoc.Options{USBUnpowered: true})
	soc.Activate()
	newEngine(t, soc, quiesce.Options{}).QuiesceAll()

	if w := sim.Writes(soc.Bus.Trace(), usbBase, usbBase+0x1000); len(w) != 0 {
		t.Errorf("unpowered USB core written at %x", w)
	}
}

func TestUSBPoweredIdleCoreIsReset(t *testing.T) {
	// Powered but never brought up by the loader.
	soc := simsoc.New(testTable(), simsoc.Options{})
	e := newEngine(t, soc, quiesce.Options{})
	u := periph.NewUSBHS(soc.Bus, usbBase)
	soc.Bus.ResetTrace()
	e.QuiesceAll()

	if sim.FirstWrite(soc.Bus.Trace(), u.Grstctl.Addr(), u.Grstctl.Addr()+4) < 0 {
		t.Error("idle powered core was not soft reset")
	}
	if r := e.Audit(); len(r) != 0 {
		t.Errorf("Audit: %v", r)
	}
}

func TestAuditReportsResidue(t *testing.T) {
	soc := simsoc.New(testTable(), simsoc.Options{})
	soc.Activate()
	e := newEngine(t, soc, quiesce.Options{})

	want := quiesce.Residue{
		Peripheral: "rtc",
		Register:   "INTENSET",
		Addr:       rtcBase + 0x304,
		Got:        0x3,
		Want:       0,
	}
	for _, r := range e.Audit() {
		if r == want {
			return
		}
	}
	t.Errorf("Audit did not report %v", want)
}

func TestNewRejectsInvalidTable(t *testing.T) {
	for _, test := range []struct {
		name string
		mod  func(tb *quiesce.Table)
	}{
		{
			name: "unknown kind",
			mod: func(tb *quiesce.Table) {
				tb.Peripherals = append(tb.Peripherals, quiesce.Descriptor{Kind: "lptimer", Name: "lptimer", Base: 0x1000})
			},
		}, {
			name: "serial irq past the nvic",
			mod: func(tb *quiesce.Table) {
				tb.Peripherals[1].IRQ = quiesce.IRQ(1100)
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			tb := testTable()
			test.mod(&tb)
			b := sim.New()
			e, err := quiesce.New(b, tb, quiesce.Options{Sleep: noSleep})
			if err == nil {
				e.QuiesceAll()
				t.Fatalf("New accepted the table; wrote %x", sim.Writes(b.Trace(), nvicBase+0x100, nvicBase+0x180))
			}
		})
	}
}
