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

const (
	uarteTasksStartRx     = 0x000
	uarteTasksStopRx      = 0x004
	uarteTasksStartTx     = 0x008
	uarteTasksStopTx      = 0x00C
	uarteSubscribeStartRx = 0x080
	uarteEventsCts        = 0x100
	uarteEventsEndRx      = 0x110
	uarteEventsRxTo       = 0x144
	uarteEventsRxStarted  = 0x14C
	uartePublishCts       = 0x180
	uarteShorts           = 0x200
	uarteInten            = 0x300
	uarteIntenset         = 0x304
	uarteIntenclr         = 0x308
	uarteEnable           = 0x500
	uartePselRts          = 0x508
	uartePselTxd          = 0x50C
	uartePselCts          = 0x510
	uartePselRxd          = 0x514
)

// The SUBSCRIBE block runs from SUBSCRIBE_STARTRX up to EVENTS_CTS and the
// PUBLISH block from PUBLISH_CTS up to SHORTS.
const (
	UARTESubscribeOffset = uarteSubscribeStartRx
	UARTESubscribeSize   = uarteEventsCts - uarteSubscribeStartRx
	UARTEPublishOffset   = uartePublishCts
	UARTEPublishSize     = uarteShorts - uartePublishCts
)

const (
	// PSELDisconnected is the pin select value of an unassigned signal.
	PSELDisconnected = regs.AllBits

	uarteEnableOn = 8
)

// UARTE is a serial engine with EasyDMA.
type UARTE struct {
	Base uint32

	TasksStartRx    regs.Register
	TasksStopRx     regs.Register
	TasksStartTx    regs.Register
	TasksStopTx     regs.Register
	EventsEndRx     regs.Register
	EventsRxTo      regs.Register
	EventsRxStarted regs.Register
	Inten           regs.Register
	IntenSet        regs.Register
	IntenClr        regs.Register
	Enable          regs.Register
	PselTxd         regs.Register
	PselRxd         regs.Register
	PselRts         regs.Register
	PselCts         regs.Register

	bus regs.Bus
}

// NewUARTE returns the UARTE block at base.
func NewUARTE(b regs.Bus, base uint32) *UARTE {
	return &UARTE{
		Base:            base,
		TasksStartRx:    regs.Reg(b, base+uarteTasksStartRx),
		TasksStopRx:     regs.Reg(b, base+uarteTasksStopRx),
		TasksStartTx:    regs.Reg(b, base+uarteTasksStartTx),
		TasksStopTx:     regs.Reg(b, base+uarteTasksStopTx),
		EventsEndRx:     regs.Reg(b, base+uarteEventsEndRx),
		EventsRxTo:      regs.Reg(b, base+uarteEventsRxTo),
		EventsRxStarted: regs.Reg(b, base+uarteEventsRxStarted),
		Inten:           regs.Reg(b, base+uarteInten),
		IntenSet:        regs.Reg(b, base+uarteIntenset),
		IntenClr:        regs.Reg(b, base+uarteIntenclr),
		Enable:          regs.Reg(b, base+uarteEnable),
		PselTxd:         regs.Reg(b, base+uartePselTxd),
		PselRxd:         regs.Reg(b, base+uartePselRxd),
		PselRts:         regs.Reg(b, base+uartePselRts),
		PselCts:         regs.Reg(b, base+uartePselCts),
		bus:             b,
	}
}

// DisableInterrupts disables the interrupt sources in mask.
func (u *UARTE) DisableInterrupts(mask uint32) {
	u.IntenClr.Set(mask)
}

// StopRx triggers the STOPRX task.
func (u *UARTE) StopRx() {
	u.TasksStopRx.Trigger()
}

// ClearRxEvents clears the RXSTARTED, ENDRX and RXTO events.
func (u *UARTE) ClearRxEvents() {
	u.EventsRxStarted.Set(0)
	u.EventsEndRx.Set(0)
	u.EventsRxTo.Set(0)
}

// Disable turns the engine off.
func (u *UARTE) Disable() {
	u.Enable.Set(0)
}

// Enabled reports whether the engine is on.
func (u *UARTE) Enabled() bool {
	return u.Enable.Get() == uarteEnableOn
}

// PinSelects returns the TXD, RXD, RTS and CTS pin select registers, in
// that order.
func (u *UARTE) PinSelects() [4]regs.Register {
	return [4]regs.Register{u.PselTxd, u.PselRxd, u.PselRts, u.PselCts}
}

// Pins returns the current TXD, RXD, RTS and CTS pin select values.
func (u *UARTE) Pins() [4]uint32 {
	var r [4]uint32
	for i, p := range u.PinSelects() {
		r[i] = p.Get()
	}
	return r
}

// DisconnectPins detaches every signal from its pin.
func (u *UARTE) DisconnectPins() {
	for _, p := range u.PinSelects() {
		p.Set(PSELDisconnected)
	}
}

// ClearSubscriptions zeroes the SUBSCRIBE configuration block.
func (u *UARTE) ClearSubscriptions() {
	regs.Fill(u.bus, u.Base+UARTESubscribeOffset, UARTESubscribeSize, 0)
}

// ClearPublications zeroes the PUBLISH configuration block.
func (u *UARTE) ClearPublications() {
	regs.Fill(u.bus, u.Base+UARTEPublishOffset, UARTEPublishSize, 0)
}
