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

// Package quiesce implements the peripheral quiescing engine.
//
// The engine walks a capability table and drives every peripheral instance
// it describes to the inactive baseline closest to its power-on reset
// state: stopped, interrupts masked, pending events cleared and
// cross-peripheral routing severed. It is the last thing to touch the
// peripherals before control passes to the next image, so nothing here
// reports failure; a stuck peripheral must never prevent the jump.
package quiesce

import (
	"fmt"
	"sort"
	"time"

	"github.com/golang/glog"
	"github.com/radboot/radboot/periph"
	"github.com/radboot/radboot/regs"
)

// Options tunes the bounded waits.
type Options struct {
	// USBSettle is the pause between soft-disconnecting the USB controller
	// and masking its interrupts.
	USBSettle time.Duration
	// USBResetPolls bounds the number of reads spent waiting for the USB
	// core soft reset to complete.
	USBResetPolls int
	// Sleep is used for settle delays. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

const (
	defaultUSBSettle     = 200 * time.Microsecond
	defaultUSBResetPolls = 100000
)

func (o Options) withDefaults() Options {
	if o.USBSettle == 0 {
		o.USBSettle = defaultUSBSettle
	}
	if o.USBResetPolls <= 0 {
		o.USBResetPolls = defaultUSBResetPolls
	}
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	return o
}

// unit is one peripheral instance as seen by the engine.
type unit interface {
	name() string
	kind() Kind
	quiesce(e *Engine)
	audit(e *Engine) []Residue
}

// Engine quiesces a fixed set of peripherals.
type Engine struct {
	opts  Options
	table Table
	units []unit

	nvic  *periph.NVIC
	gpios map[uint32]*periph.GPIO
	dppi  bool
}

// New builds an engine for the peripherals described by t on bus b.
func New(b regs.Bus, t Table, opts Options) (*Engine, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		opts:  opts.withDefaults(),
		table: t,
		gpios: make(map[uint32]*periph.GPIO),
		dppi:  t.Has(KindDPPIC),
	}

	for _, d := range t.Peripherals {
		base := uint32(d.Base)
		var u unit
		switch d.Kind {
		case KindRTC:
			u = &rtcUnit{d: d, rtc: periph.NewRTC(b, base)}
		case KindGRTC:
			ch := d.Channels
			if ch == 0 {
				ch = defaultGRTCChannels
			}
			u = &grtcUnit{d: d, grtc: periph.NewGRTC(b, base, ch)}
		case KindUARTE:
			u = &uarteUnit{d: d, uarte: periph.NewUARTE(b, base)}
		case KindPPI:
			u = &fabricUnit{d: d, fabric: periph.NewPPI(b, base)}
		case KindDPPIC:
			u = &fabricUnit{d: d, fabric: periph.NewDPPIC(b, base)}
		case KindClock:
			u = &clockUnit{d: d, clock: periph.NewClock(b, base)}
		case KindUSBHS:
			u = &usbUnit{d: d, usb: periph.NewUSBHS(b, base)}
		case KindGPIO:
			pins := d.Pins
			if pins == 0 {
				pins = defaultGPIOPins
			}
			g := periph.NewGPIO(b, base, d.Port, pins)
			e.gpios[d.Port] = g
			u = &gpioUnit{d: d, gpio: g}
		case KindNVIC:
			lines := d.Lines
			if lines == 0 {
				lines = defaultNVICLines
			}
			e.nvic = periph.NewNVIC(b, base, lines)
			u = &nvicUnit{d: d, nvic: e.nvic}
		default:
			return nil, fmt.Errorf("peripheral %q: unsupported kind %q", d.Name, d.Kind)
		}
		e.units = append(e.units, u)
	}
	sort.SliceStable(e.units, func(i, j int) bool {
		return phase[e.units[i].kind()] < phase[e.units[j].kind()]
	})
	return e, nil
}

// QuiesceAll drives every peripheral to its inactive baseline.
//
// It's safe to call more than once; a second call leaves the peripherals in
// the same state as the first.
func (e *Engine) QuiesceAll() {
	glog.Infof("quiesce: %d peripherals on %s", len(e.units), e.table.SoC)
	for _, u := range e.units {
		glog.V(1).Infof("quiesce: %s (%s)", u.name(), u.kind())
		u.quiesce(e)
	}
	glog.Info("quiesce: peripheral cleanup completed")
}

// Names returns the peripheral names in the order QuiesceAll visits them.
func (e *Engine) Names() []string {
	r := make([]string, 0, len(e.units))
	for _, u := range e.units {
		r = append(r, u.name())
	}
	return r
}

// gpio returns the bank for port, or nil if the table doesn't describe one.
func (e *Engine) gpio(port uint32) *periph.GPIO {
	return e.gpios[port]
}

type rtcUnit struct {
	d   Descriptor
	rtc *periph.RTC
}

func (u *rtcUnit) name() string { return u.d.Name }
func (u *rtcUnit) kind() Kind   { return u.d.Kind }

func (u *rtcUnit) quiesce(*Engine) {
	u.rtc.Stop()
	u.rtc.DisableEvents(regs.AllBits)
	u.rtc.DisableInterrupts(regs.AllBits)
}

// grtcUnit releases the global RTC the way the system timer driver's
// uninit does. The counter is shared, so only this core's view is reset.
type grtcUnit struct {
	d    Descriptor
	grtc *periph.GRTC
}

func (u *grtcUnit) name() string { return u.d.Name }
func (u *grtcUnit) kind() Kind   { return u.d.Kind }

func (u *grtcUnit) quiesce(*Engine) {
	u.grtc.Uninit()
}

type uarteUnit struct {
	d     Descriptor
	uarte *periph.UARTE
}

func (u *uarteUnit) name() string { return u.d.Name }
func (u *uarteUnit) kind() Kind   { return u.d.Kind }

func (u *uarteUnit) quiesce(e *Engine) {
	s := u.uarte
	s.DisableInterrupts(regs.AllBits)
	if u.d.IRQ != nil && e.nvic != nil {
		e.nvic.DisableIRQ(*u.d.IRQ)
		e.nvic.ClearPendingIRQ(*u.d.IRQ)
	}
	s.StopRx()
	s.ClearRxEvents()
	s.Disable()

	if !e.table.SkipSerialPinRestore {
		pins := s.Pins()
		s.DisconnectPins()
		for _, psel := range pins {
			p, ok := periph.PinFromPSEL(psel)
			if !ok {
				continue
			}
			g := e.gpio(p.Port)
			if g == nil {
				glog.Warningf("quiesce: %s: no GPIO bank for pin %v, leaving it configured", u.d.Name, p)
				continue
			}
			g.ConfigDefault(p.Pin)
		}
	}

	if e.dppi {
		s.ClearSubscriptions()
		s.ClearPublications()
	}
}

type fabricUnit struct {
	d      Descriptor
	fabric *periph.Fabric
}

func (u *fabricUnit) name() string { return u.d.Name }
func (u *fabricUnit) kind() Kind   { return u.d.Kind }

func (u *fabricUnit) quiesce(*Engine) {
	u.fabric.DisableAllChannels()
}

type clockUnit struct {
	d     Descriptor
	clock *periph.Clock
}

func (u *clockUnit) name() string { return u.d.Name }
func (u *clockUnit) kind() Kind   { return u.d.Kind }

func (u *clockUnit) quiesce(*Engine) {
	u.clock.DisableInterrupts(regs.AllBits)
}

type usbUnit struct {
	d   Descriptor
	usb *periph.USBHS
}

func (u *usbUnit) name() string { return u.d.Name }
func (u *usbUnit) kind() Kind   { return u.d.Kind }

// quiesce tears the controller down if it was enabled. The loader can't
// tell a core it enabled from one the boot ROM merely powered, so any core
// answering with its ID signature is treated as enabled. Resetting an idle
// core leaves it where it already was.
func (u *usbUnit) quiesce(e *Engine) {
	if !u.usb.Powered() {
		glog.V(1).Infof("quiesce: %s: controller not enabled, skipping", u.d.Name)
		return
	}
	u.usb.SoftDisconnect()
	e.opts.Sleep(e.opts.USBSettle)
	u.usb.MaskAll()
	if !u.usb.CoreReset(e.opts.USBResetPolls) {
		glog.Warningf("quiesce: %s: core soft reset not acknowledged after %d polls, continuing", u.d.Name, e.opts.USBResetPolls)
	}
}

type gpioUnit struct {
	d    Descriptor
	gpio *periph.GPIO
}

func (u *gpioUnit) name() string { return u.d.Name }
func (u *gpioUnit) kind() Kind   { return u.d.Kind }

func (u *gpioUnit) quiesce(*Engine) {
	for pin := uint32(0); pin < u.gpio.NumPins; pin++ {
		u.gpio.ConfigDefault(pin)
	}
	u.gpio.ClearLatch()
}

type nvicUnit struct {
	d    Descriptor
	nvic *periph.NVIC
}

func (u *nvicUnit) name() string { return u.d.Name }
func (u *nvicUnit) kind() Kind   { return u.d.Kind }

func (u *nvicUnit) quiesce(*Engine) {
	u.nvic.DisableAll()
}
