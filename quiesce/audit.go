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

package quiesce

import (
	"fmt"

	"github.com/radboot/radboot/periph"
	"github.com/radboot/radboot/regs"
)

// Residue is a register which doesn't read back at its quiesced value.
type Residue struct {
	Peripheral string
	Register   string
	Addr       uint32
	Got        uint32
	Want       uint32
}

func (r Residue) String() string {
	return fmt.Sprintf("%s.%s @0x%08x = 0x%08x, want 0x%08x", r.Peripheral, r.Register, r.Addr, r.Got, r.Want)
}

// Audit reads back every register QuiesceAll sets and reports those which
// aren't at their quiesced value. An empty result means every peripheral is
// interrupt-silent and detached.
func (e *Engine) Audit() []Residue {
	var r []Residue
	for _, u := range e.units {
		r = append(r, u.audit(e)...)
	}
	return r
}

type checker struct {
	name string
	r    []Residue
}

func (c *checker) expect(register string, reg regs.Register, want uint32) {
	if got := reg.Get(); got != want {
		c.r = append(c.r, Residue{Peripheral: c.name, Register: register, Addr: reg.Addr(), Got: got, Want: want})
	}
}

func (c *checker) expectClear(register string, reg regs.Register, bits uint32) {
	if got := reg.Get(); got&bits != 0 {
		c.r = append(c.r, Residue{Peripheral: c.name, Register: register, Addr: reg.Addr(), Got: got, Want: got &^ bits})
	}
}

func (c *checker) expectBits(register string, reg regs.Register, bits uint32) {
	if got := reg.Get(); got&bits != bits {
		c.r = append(c.r, Residue{Peripheral: c.name, Register: register, Addr: reg.Addr(), Got: got, Want: got | bits})
	}
}

func (u *rtcUnit) audit(*Engine) []Residue {
	c := &checker{name: u.d.Name}
	c.expect("INTENSET", u.rtc.IntenSet, 0)
	c.expect("EVTEN", u.rtc.Evten, 0)
	return c.r
}

func (u *grtcUnit) audit(*Engine) []Residue {
	c := &checker{name: u.d.Name}
	c.expectClear("MODE", u.grtc.Mode, periph.GRTCModeSysCounterEn)
	for i := uint32(0); i < periph.GRTCIntGroups; i++ {
		c.expect(fmt.Sprintf("INTENSET%d", i), u.grtc.IntenSet(i), 0)
	}
	for i := uint32(0); i < u.grtc.Channels; i++ {
		c.expect(fmt.Sprintf("CC[%d].CCEN", i), u.grtc.CCEN(i), 0)
	}
	return c.r
}

func (u *uarteUnit) audit(e *Engine) []Residue {
	c := &checker{name: u.d.Name}
	s := u.uarte
	c.expect("INTEN", s.Inten, 0)
	c.expect("ENABLE", s.Enable, 0)
	c.expect("EVENTS_RXSTARTED", s.EventsRxStarted, 0)
	c.expect("EVENTS_ENDRX", s.EventsEndRx, 0)
	c.expect("EVENTS_RXTO", s.EventsRxTo, 0)
	if !e.table.SkipSerialPinRestore {
		for i, name := range []string{"PSEL.TXD", "PSEL.RXD", "PSEL.RTS", "PSEL.CTS"} {
			c.expect(name, s.PinSelects()[i], periph.PSELDisconnected)
		}
	}
	return c.r
}

func (u *fabricUnit) audit(*Engine) []Residue {
	c := &checker{name: u.d.Name}
	c.expect("CHEN", u.fabric.Chen, 0)
	return c.r
}

func (u *clockUnit) audit(*Engine) []Residue {
	c := &checker{name: u.d.Name}
	c.expect("INTENSET", u.clock.IntenSet, 0)
	return c.r
}

func (u *usbUnit) audit(*Engine) []Residue {
	if !u.usb.Powered() {
		return nil
	}
	c := &checker{name: u.d.Name}
	c.expectBits("DCTL", u.usb.Dctl, periph.DctlSftDiscon)
	c.expect("GINTMSK", u.usb.Gintmsk, 0)
	c.expect("DIEPMSK", u.usb.Diepmsk, 0)
	c.expect("DOEPMSK", u.usb.Doepmsk, 0)
	c.expect("DAINTMSK", u.usb.Daintmsk, 0)
	return c.r
}

func (u *gpioUnit) audit(*Engine) []Residue {
	c := &checker{name: u.d.Name}
	for pin := uint32(0); pin < u.gpio.NumPins; pin++ {
		c.expect(fmt.Sprintf("PIN_CNF[%d]", pin), u.gpio.PinCnf(pin), periph.PinCnfDefault)
	}
	c.expect("LATCH", u.gpio.Latch, 0)
	return c.r
}

func (u *nvicUnit) audit(*Engine) []Residue {
	c := &checker{name: u.d.Name}
	for i := uint32(0); i < u.nvic.Words(); i++ {
		c.expect(fmt.Sprintf("ISER%d", i), u.nvic.ISER(i), 0)
		c.expect(fmt.Sprintf("ISPR%d", i), u.nvic.ISPR(i), 0)
	}
	return c.r
}
