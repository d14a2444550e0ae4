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

// Package simsoc models just enough of a SoC on a sim.Bus to exercise the
// quiescing engine and the handoff sequencer: set/clear register aliases,
// write-1-to-clear flags, a USB core whose soft reset takes time, the
// cache and MPU registers of the core, and a core which records the jump.
package simsoc

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/golang/glog"
	"github.com/radboot/radboot/armv8m"
	"github.com/radboot/radboot/periph"
	"github.com/radboot/radboot/quiesce"
	"github.com/radboot/radboot/regs/sim"
)

// Options controls the modelled hardware.
type Options struct {
	// USBResetReads is the number of GRSTCTL reads a core soft reset takes
	// to complete.
	USBResetReads int
	// USBResetStuck makes the core soft reset never complete.
	USBResetStuck bool
	// USBUnpowered makes the USB core read back as absent.
	USBUnpowered bool
	// MPURegions is the number of MPU regions, 16 if zero.
	MPURegions uint32
	// NoDCache makes the core report no data cache.
	NoDCache bool
}

// SNPSID is the core ID a powered USB controller reports.
const SNPSID = 0x4F54400A

// Cache geometry reported through CCSIDR: 64 sets of 4 ways, 32 byte lines.
const (
	CacheSets = 64
	CacheWays = 4
	ccsidr    = (CacheSets-1)<<13 | (CacheWays-1)<<3 | 1
	clidr     = 0x3 // separate I and D caches at level 1
)

// SoC is a simulated SoC built from a capability table.
type SoC struct {
	Bus   *sim.Bus
	Table quiesce.Table
	// Core drives the simulated system control registers.
	Core *armv8m.Core
	// CPU records the privileged register writes and the jump.
	CPU *Recorder

	opts Options

	mu         sync.Mutex
	rtcRunning map[string]bool
	usbReset   map[uint32]int
	mpu        map[uint32][2]uint32
}

// New builds a SoC with the peripherals described by t in their reset state.
func New(t quiesce.Table, opts Options) *SoC {
	if opts.MPURegions == 0 {
		opts.MPURegions = 16
	}
	b := sim.New()
	s := &SoC{
		Bus:        b,
		Table:      t,
		opts:       opts,
		rtcRunning: make(map[string]bool),
		usbReset:   make(map[uint32]int),
		mpu:        make(map[uint32][2]uint32),
	}
	s.CPU = &Recorder{bus: b}
	s.Core = armv8m.New(b, s.CPU, true)

	for _, d := range t.Peripherals {
		base := uint32(d.Base)
		switch d.Kind {
		case quiesce.KindRTC:
			s.rtc(d.Name, periph.NewRTC(b, base))
		case quiesce.KindGRTC:
			s.grtc(d.Name, periph.NewGRTC(b, base, channelsOf(d)))
		case quiesce.KindUARTE:
			s.uarte(periph.NewUARTE(b, base))
		case quiesce.KindPPI:
			s.fabric(periph.NewPPI(b, base))
		case quiesce.KindDPPIC:
			s.fabric(periph.NewDPPIC(b, base))
		case quiesce.KindClock:
			c := periph.NewClock(b, base)
			b.SetClear(c.IntenSet.Addr(), c.IntenSet.Addr(), c.IntenClr.Addr())
		case quiesce.KindUSBHS:
			s.usb(periph.NewUSBHS(b, base))
		case quiesce.KindGPIO:
			s.gpio(periph.NewGPIO(b, base, d.Port, pinsOf(d)))
		case quiesce.KindNVIC:
			n := periph.NewNVIC(b, base, linesOf(d))
			for i := uint32(0); i < n.Words(); i++ {
				b.SetClear(n.ISER(i).Addr(), n.ISER(i).Addr(), n.ICER(i).Addr())
				b.SetClear(n.ISPR(i).Addr(), n.ISPR(i).Addr(), n.ICPR(i).Addr())
			}
		default:
			panic(fmt.Sprintf("simsoc: no model for kind %q", d.Kind))
		}
	}
	s.systemControl()
	return s
}

func pinsOf(d quiesce.Descriptor) uint32 {
	if d.Pins == 0 {
		return periph.MaxPins
	}
	return d.Pins
}

func channelsOf(d quiesce.Descriptor) uint32 {
	if d.Channels == 0 {
		return 16
	}
	return d.Channels
}

func linesOf(d quiesce.Descriptor) uint32 {
	if d.Lines == 0 {
		return 480
	}
	return d.Lines
}

func (s *SoC) rtc(name string, r *periph.RTC) {
	b := s.Bus
	b.OnWrite(r.TasksStart.Addr(), func(_, v uint32) {
		if v&1 != 0 {
			s.setRunning(name, true)
		}
	})
	b.OnWrite(r.TasksStop.Addr(), func(_, v uint32) {
		if v&1 != 0 {
			s.setRunning(name, false)
		}
	})
	b.OnWrite(r.TasksClear.Addr(), func(_, v uint32) {
		if v&1 != 0 {
			b.Poke(r.Counter.Addr(), 0)
		}
	})
	b.OnRead(r.Counter.Addr(), func(a uint32) uint32 {
		c := b.Peek(a)
		if s.RTCRunning(name) {
			c = (c + 1) & 0xFFFFFF
			b.Poke(a, c)
		}
		return c
	})
	b.SetClear(r.IntenSet.Addr(), r.IntenSet.Addr(), r.IntenClr.Addr())
	b.SetClear(r.Evten.Addr(), r.EvtenSet.Addr(), r.EvtenClr.Addr())
}

func (s *SoC) grtc(name string, g *periph.GRTC) {
	b := s.Bus
	b.OnWrite(g.TasksStart.Addr(), func(_, v uint32) {
		if v&1 != 0 {
			s.setRunning(name, true)
		}
	})
	b.OnWrite(g.TasksStop.Addr(), func(_, v uint32) {
		if v&1 != 0 {
			s.setRunning(name, false)
		}
	})
	for i := uint32(0); i < periph.GRTCIntGroups; i++ {
		b.SetClear(g.IntenSet(i).Addr(), g.IntenSet(i).Addr(), g.IntenClr(i).Addr())
	}
}

func (s *SoC) setRunning(name string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rtcRunning[name] = on
}

// RTCRunning reports whether the named RTC or GRTC counter is running.
func (s *SoC) RTCRunning(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rtcRunning[name]
}

func (s *SoC) uarte(u *periph.UARTE) {
	b := s.Bus
	b.SetClear(u.Inten.Addr(), u.IntenSet.Addr(), u.IntenClr.Addr())
	b.OnWrite(u.TasksStartRx.Addr(), func(_, v uint32) {
		if v&1 != 0 && b.Peek(u.Enable.Addr()) == 8 {
			b.Poke(u.EventsRxStarted.Addr(), 1)
		}
	})
	// Stopping an active receiver times out and ends the pending transfer.
	b.OnWrite(u.TasksStopRx.Addr(), func(_, v uint32) {
		if v&1 != 0 && b.Peek(u.Enable.Addr()) == 8 {
			b.Poke(u.EventsRxTo.Addr(), 1)
			b.Poke(u.EventsEndRx.Addr(), 1)
		}
	})
	for _, p := range u.PinSelects() {
		b.Poke(p.Addr(), periph.PSELDisconnected)
	}
}

func (s *SoC) fabric(f *periph.Fabric) {
	s.Bus.SetClear(f.Chen.Addr(), f.ChenSet.Addr(), f.ChenClr.Addr())
}

func (s *SoC) usb(u *periph.USBHS) {
	b := s.Bus
	id := uint32(SNPSID)
	if s.opts.USBUnpowered {
		id = 0
	}
	b.Poke(u.Gsnpsid.Addr(), id)
	b.ReadOnly(u.Gsnpsid.Addr())
	b.Poke(u.Grstctl.Addr(), periph.GrstctlAHBIdle)
	b.OnWrite(u.Grstctl.Addr(), func(a, v uint32) {
		if v&periph.GrstctlCSftRst != 0 {
			s.mu.Lock()
			s.usbReset[u.Base] = s.opts.USBResetReads
			s.mu.Unlock()
		}
		b.Poke(a, v|periph.GrstctlAHBIdle)
	})
	b.OnRead(u.Grstctl.Addr(), func(a uint32) uint32 {
		v := b.Peek(a)
		if v&periph.GrstctlCSftRst == 0 || s.opts.USBResetStuck {
			return v
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.usbReset[u.Base] > 0 {
			s.usbReset[u.Base]--
			return v
		}
		v &^= periph.GrstctlCSftRst
		b.Poke(a, v)
		b.Poke(u.Gintsts.Addr(), 0)
		return v
	})
	b.WriteOneToClear(u.Gintsts.Addr())
}

func (s *SoC) gpio(g *periph.GPIO) {
	b := s.Bus
	b.SetClear(g.Out.Addr(), g.OutSet.Addr(), g.OutClr.Addr())
	b.SetClear(g.Dir.Addr(), g.DirSet.Addr(), g.DirClr.Addr())
	b.WriteOneToClear(g.Latch.Addr())
	b.ReadOnly(g.In.Addr())
	for pin := uint32(0); pin < g.NumPins; pin++ {
		b.Poke(g.PinCnf(pin).Addr(), periph.PinCnfDefault)
	}
}

func (s *SoC) systemControl() {
	b := s.Bus
	b.Poke(armv8m.MPUType, s.opts.MPURegions<<8)
	b.ReadOnly(armv8m.MPUType)
	if !s.opts.NoDCache {
		b.Poke(armv8m.CLIDR, clidr)
		b.Poke(armv8m.CCSIDR, ccsidr)
	}
	b.ReadOnly(armv8m.CLIDR)
	b.ReadOnly(armv8m.CCSIDR)

	// RBAR and RLAR are windows onto the region selected by RNR.
	region := func() uint32 { return b.Peek(armv8m.MPURnr) }
	b.OnWrite(armv8m.MPURbar, func(_, v uint32) { s.setRegion(region(), 0, v) })
	b.OnWrite(armv8m.MPURlar, func(_, v uint32) { s.setRegion(region(), 1, v) })
	b.OnRead(armv8m.MPURbar, func(uint32) uint32 { return s.MPURegion(region())[0] })
	b.OnRead(armv8m.MPURlar, func(uint32) uint32 { return s.MPURegion(region())[1] })
}

func (s *SoC) setRegion(n uint32, i int, v uint32) {
	if n >= s.opts.MPURegions {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.mpu[n]
	r[i] = v
	s.mpu[n] = r
}

// MPURegion returns RBAR and RLAR of region n.
func (s *SoC) MPURegion(n uint32) [2]uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mpu[n]
}

// EnabledMPURegions returns the number of regions with the enable bit set.
func (s *SoC) EnabledMPURegions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.mpu {
		if r[1]&1 != 0 {
			n++
		}
	}
	return n
}

// CachesEnabled reports the CCR instruction and data cache enables.
func (s *SoC) CachesEnabled() (icache, dcache bool) {
	ccr := s.Bus.Peek(armv8m.CCR)
	return ccr&armv8m.CCRIC != 0, ccr&armv8m.CCRDC != 0
}

// SetInput drives the input level of a GPIO pin.
func (s *SoC) SetInput(p periph.Pin, high bool) {
	g := s.bank(p.Port)
	if g == nil {
		return
	}
	v := s.Bus.Peek(g.In.Addr())
	if high {
		v |= 1 << p.Pin
	} else {
		v &^= 1 << p.Pin
	}
	s.Bus.Poke(g.In.Addr(), v)
}

func (s *SoC) bank(port uint32) *periph.GPIO {
	for _, d := range s.Table.Peripherals {
		if d.Kind == quiesce.KindGPIO && d.Port == port {
			return periph.NewGPIO(s.Bus, uint32(d.Base), d.Port, pinsOf(d))
		}
	}
	return nil
}

// Activate puts every peripheral into the state a loader leaves it in:
// running, interrupt sources enabled, events pending and pins claimed. The
// trace is reset afterwards.
func (s *SoC) Activate() {
	b := s.Bus
	var ports []uint32
	for _, d := range s.Table.Peripherals {
		if d.Kind == quiesce.KindGPIO {
			ports = append(ports, d.Port)
		}
	}

	serial := uint32(0)
	for _, d := range s.Table.Peripherals {
		base := uint32(d.Base)
		switch d.Kind {
		case quiesce.KindRTC:
			r := periph.NewRTC(b, base)
			s.setRunning(d.Name, true)
			b.Poke(r.IntenSet.Addr(), 0x3)
			b.Poke(r.Evten.Addr(), 0x10003)
		case quiesce.KindGRTC:
			g := periph.NewGRTC(b, base, channelsOf(d))
			s.setRunning(d.Name, true)
			b.Poke(g.Mode.Addr(), periph.GRTCModeAutoEn|periph.GRTCModeSysCounterEn)
			b.Poke(g.IntenSet(1).Addr(), 0x3)
			b.Poke(g.CCEN(0).Addr(), 1)
			b.Poke(g.CCEN(1).Addr(), 1)
		case quiesce.KindUARTE:
			u := periph.NewUARTE(b, base)
			b.Poke(u.Enable.Addr(), 8)
			b.Poke(u.Inten.Addr(), 0x00000114)
			b.Poke(u.EventsRxStarted.Addr(), 1)
			b.Poke(u.EventsEndRx.Addr(), 1)
			b.Poke(base+periph.UARTESubscribeOffset, 0x80000003)
			b.Poke(base+periph.UARTEPublishOffset+0x10, 0x80000004)
			if len(ports) > 0 {
				port := ports[serial%uint32(len(ports))]
				tx := periph.Pin{Port: port, Pin: 20 + 2*serial}
				rx := periph.Pin{Port: port, Pin: 21 + 2*serial}
				b.Poke(u.PselTxd.Addr(), tx.PSEL())
				b.Poke(u.PselRxd.Addr(), rx.PSEL())
				if g := s.bank(port); g != nil {
					b.Poke(g.PinCnf(tx.Pin).Addr(), periph.PinCnfOutput)
					b.Poke(g.PinCnf(rx.Pin).Addr(), periph.PinCnfInputNoPull)
				}
			}
			serial++
		case quiesce.KindPPI, quiesce.KindDPPIC:
			b.Poke(periph.NewPPI(b, base).Chen.Addr(), 0x0000FFFF)
		case quiesce.KindClock:
			c := periph.NewClock(b, base)
			b.Poke(c.IntenSet.Addr(), 0x3)
		case quiesce.KindUSBHS:
			u := periph.NewUSBHS(b, base)
			if !u.Powered() {
				continue
			}
			b.Poke(u.Gintmsk.Addr(), periph.GintUSBRst|periph.GintEnumDone|periph.GintUSBSusp|periph.GintIEPInt|periph.GintOEPInt)
			b.Poke(u.Diepmsk.Addr(), 0xF)
			b.Poke(u.Doepmsk.Addr(), 0xF)
			b.Poke(u.Daintmsk.Addr(), 0x00010001)
			b.Poke(u.Gintsts.Addr(), periph.GintUSBRst)
		case quiesce.KindGPIO:
			g := periph.NewGPIO(b, base, d.Port, pinsOf(d))
			for pin := uint32(0); pin < g.NumPins; pin++ {
				if pin%2 == 0 {
					b.Poke(g.PinCnf(pin).Addr(), periph.PinCnfOutput)
				} else {
					b.Poke(g.PinCnf(pin).Addr(), periph.PinCnfPullUp)
				}
			}
			b.Poke(g.Latch.Addr(), 0x5)
		case quiesce.KindNVIC:
			n := periph.NewNVIC(b, base, linesOf(d))
			for i := uint32(0); i < n.Words(); i++ {
				b.Poke(n.ISER(i).Addr(), 0x0000FFFF)
				b.Poke(n.ISPR(i).Addr(), 0x1)
			}
		}
	}

	b.Poke(armv8m.CCR, armv8m.CCRIC|armv8m.CCRDC)
	s.CPU.SetStackLimits(0x20000400, 0x20000800)
	b.Poke(armv8m.MPUCtrl, 0x5)
	for i := uint32(0); i < 4 && i < s.opts.MPURegions; i++ {
		s.setRegion(i, 0, 0x20000000+i*0x10000)
		s.setRegion(i, 1, 0x2000FFE0+i*0x10000|1)
	}
	b.ResetTrace()
}

// Load places an image at addr.
func (s *SoC) Load(addr uint32, image []byte) {
	s.Bus.Load(addr, image)
}

// Recorder implements armv8m.Special by recording what the privileged
// instructions would have done.
type Recorder struct {
	bus *sim.Bus

	// OnJump, if set, is called with the stack pointer and the entry
	// address (Thumb bit stripped) in place of executing the next image.
	OnJump func(sp, entry uint32)

	mu       sync.Mutex
	barriers int
	psplim   uint32
	msplim   uint32
	jumped   bool
	msp      uint32
	pc       uint32
	control  uint32
}

var _ armv8m.Special = &Recorder{}

func (r *Recorder) DSB() { r.barrier() }
func (r *Recorder) ISB() { r.barrier() }

func (r *Recorder) barrier() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.barriers++
}

func (r *Recorder) SetPSPLIM(v uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.psplim = v
}

func (r *Recorder) SetMSPLIM(v uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msplim = v
}

// SetStackLimits sets the limit registers as a running loader would have.
func (r *Recorder) SetStackLimits(psplim, msplim uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.psplim, r.msplim = psplim, msplim
}

// StackLimits returns PSPLIM and MSPLIM.
func (r *Recorder) StackLimits() (psplim, msplim uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.psplim, r.msplim
}

// Jump records the register load and the branch, then ends the calling
// goroutine: nothing after the jump runs, just as on hardware.
func (r *Recorder) Jump(sp, pc uint32) {
	r.mu.Lock()
	r.jumped = true
	r.msp = sp
	r.control = 0
	r.pc = pc &^ 1
	fn := r.OnJump
	r.mu.Unlock()

	r.bus.Mark("jump")
	glog.Infof("simsoc: jump to 0x%08x with MSP 0x%08x", pc&^1, sp)
	if fn != nil {
		fn(sp, pc&^1)
	}
	runtime.Goexit()
}

// Landed returns the MSP and entry address of the jump, if it happened.
func (r *Recorder) Landed() (msp, entry uint32, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.msp, r.pc, r.jumped
}

// Control returns the CONTROL value at the time of the jump.
func (r *Recorder) Control() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.control
}

// Barriers returns the number of barrier instructions issued.
func (r *Recorder) Barriers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.barriers
}
