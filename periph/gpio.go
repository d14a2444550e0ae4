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
	gpioPinCnf  = 0x200
	gpioOut     = 0x500
	gpioOutSet  = 0x504
	gpioOutClr  = 0x508
	gpioIn      = 0x50C
	gpioDir     = 0x510
	gpioDirSet  = 0x514
	gpioDirClr  = 0x518
	gpioLatch   = 0x51C
	gpioDetMode = 0x520
)

// PIN_CNF fields.
const (
	PinCnfDirOutput       = 1 << 0
	PinCnfInputDisconnect = 1 << 1
	PinCnfPullDown        = 1 << 2
	PinCnfPullUp          = 3 << 2

	// PinCnfDefault is the reset configuration: input, input buffer
	// disconnected, no pull, standard drive, sense disabled.
	PinCnfDefault = PinCnfInputDisconnect
	// PinCnfOutput is a connected standard-drive output.
	PinCnfOutput = PinCnfDirOutput | PinCnfInputDisconnect
	// PinCnfInputNoPull is a connected input without pull resistors.
	PinCnfInputNoPull = 0
)

// MaxPins is the number of pins addressable in a single bank.
const MaxPins = 32

// GPIO is a bank of general purpose pins.
type GPIO struct {
	Base uint32
	Port uint32
	// NumPins is the number of PIN_CNF registers present.
	NumPins uint32

	Out        regs.Register
	OutSet     regs.Register
	OutClr     regs.Register
	In         regs.Register
	Dir        regs.Register
	DirSet     regs.Register
	DirClr     regs.Register
	Latch      regs.Register
	DetectMode regs.Register

	bus regs.Bus
}

// NewGPIO returns the bank at base. numPins is clamped to MaxPins.
func NewGPIO(b regs.Bus, base, port, numPins uint32) *GPIO {
	if numPins > MaxPins {
		numPins = MaxPins
	}
	return &GPIO{
		Base:       base,
		Port:       port,
		NumPins:    numPins,
		Out:        regs.Reg(b, base+gpioOut),
		OutSet:     regs.Reg(b, base+gpioOutSet),
		OutClr:     regs.Reg(b, base+gpioOutClr),
		In:         regs.Reg(b, base+gpioIn),
		Dir:        regs.Reg(b, base+gpioDir),
		DirSet:     regs.Reg(b, base+gpioDirSet),
		DirClr:     regs.Reg(b, base+gpioDirClr),
		Latch:      regs.Reg(b, base+gpioLatch),
		DetectMode: regs.Reg(b, base+gpioDetMode),
		bus:        b,
	}
}

// PinCnf returns the configuration register of pin n.
func (g *GPIO) PinCnf(n uint32) regs.Register {
	return regs.Reg(g.bus, g.Base+gpioPinCnf+4*(n%MaxPins))
}

// ConfigDefault returns pin n to its disconnected reset configuration.
func (g *GPIO) ConfigDefault(n uint32) {
	g.PinCnf(n).Set(PinCnfDefault)
}

// ConfigOutput makes pin n an output.
func (g *GPIO) ConfigOutput(n uint32) {
	g.PinCnf(n).Set(PinCnfOutput)
}

// ConfigInput makes pin n a connected input with no pull.
func (g *GPIO) ConfigInput(n uint32) {
	g.PinCnf(n).Set(PinCnfInputNoPull)
}

// SetPin drives output pin n high.
func (g *GPIO) SetPin(n uint32) {
	g.OutSet.Set(1 << (n % MaxPins))
}

// ClearPin drives output pin n low.
func (g *GPIO) ClearPin(n uint32) {
	g.OutClr.Set(1 << (n % MaxPins))
}

// ReadPin returns the input level of pin n.
func (g *GPIO) ReadPin(n uint32) bool {
	return g.In.Get()&(1<<(n%MaxPins)) != 0
}

// ClearLatch clears every latched DETECT event.
func (g *GPIO) ClearLatch() {
	g.Latch.Set(regs.AllBits)
}
