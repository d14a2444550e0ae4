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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/radboot/radboot/periph"
)

// Kind names a class of peripheral the engine knows how to quiesce.
type Kind string

const (
	KindRTC   Kind = "rtc"
	KindGRTC  Kind = "grtc"
	KindUARTE Kind = "uarte"
	KindPPI   Kind = "ppi"
	KindDPPIC Kind = "dppic"
	KindClock Kind = "clock"
	KindUSBHS Kind = "usbhs"
	KindGPIO  Kind = "gpio"
	KindNVIC  Kind = "nvic"
)

// phase orders kinds within QuiesceAll. Timers and serial engines go before
// the routing fabric so routed events from them drain first, and USB goes
// before the GPIO sweep.
var phase = map[Kind]int{
	KindRTC:   0,
	KindGRTC:  0,
	KindUARTE: 1,
	KindPPI:   2,
	KindDPPIC: 2,
	KindClock: 3,
	KindUSBHS: 4,
	KindGPIO:  5,
	KindNVIC:  6,
}

const (
	defaultGPIOPins     = 32
	defaultNVICLines    = 480
	defaultGRTCChannels = 16
)

// Addr is a 32-bit physical address which is written as a string in JSON,
// e.g. "0x5F086000".
type Addr uint32

// MarshalText implements encoding.TextMarshaler.
func (a Addr) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("0x%08X", uint32(a))), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Addr) UnmarshalText(b []byte) error {
	v, err := strconv.ParseUint(string(b), 0, 32)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", b, err)
	}
	*a = Addr(v)
	return nil
}

// Descriptor describes one peripheral instance present in the build.
type Descriptor struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
	Base Addr   `json:"base"`

	// IRQ is the interrupt line of a serial engine, if it has one.
	IRQ *uint32 `json:"irq,omitempty"`
	// Port and Pins describe a GPIO bank.
	Port uint32 `json:"port,omitempty"`
	Pins uint32 `json:"pins,omitempty"`
	// Lines is the number of NVIC interrupt lines.
	Lines uint32 `json:"lines,omitempty"`
	// Channels is the number of GRTC compare channels.
	Channels uint32 `json:"channels,omitempty"`
}

// Table is the capability table of a SoC: every peripheral instance the
// engine has to drive to its reset baseline.
type Table struct {
	SoC string `json:"soc"`
	// SkipSerialPinRestore disables returning serial engine pins to their
	// default configuration, which is unstable on some SoC series.
	SkipSerialPinRestore bool         `json:"skip_serial_pin_restore"`
	Peripherals          []Descriptor `json:"peripherals"`
}

// ParseTable decodes and validates a JSON capability table.
func ParseTable(b []byte) (Table, error) {
	var t Table
	if err := json.Unmarshal(b, &t); err != nil {
		return Table{}, fmt.Errorf("failed to parse capability table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// ReadTable reads a capability table from a file.
func ReadTable(path string) (Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read capability table %q: %w", path, err)
	}
	return ParseTable(b)
}

// Validate checks the table for descriptors the engine can't act on.
func (t Table) Validate() error {
	names := make(map[string]bool)
	ports := make(map[uint32]string)
	nvics := 0
	lines := uint32(periph.NVICMaxLines)
	for i, d := range t.Peripherals {
		if _, ok := phase[d.Kind]; !ok {
			return fmt.Errorf("peripheral %d (%q): unknown kind %q", i, d.Name, d.Kind)
		}
		if d.Name == "" {
			return fmt.Errorf("peripheral %d: missing name", i)
		}
		if names[d.Name] {
			return fmt.Errorf("peripheral %q: duplicate name", d.Name)
		}
		names[d.Name] = true
		if d.Base == 0 {
			return fmt.Errorf("peripheral %q: missing base address", d.Name)
		}
		switch d.Kind {
		case KindGPIO:
			if other, ok := ports[d.Port]; ok {
				return fmt.Errorf("peripheral %q: port %d already described by %q", d.Name, d.Port, other)
			}
			ports[d.Port] = d.Name
			if d.Pins > periph.MaxPins {
				return fmt.Errorf("peripheral %q: %d pins, a bank has at most %d", d.Name, d.Pins, periph.MaxPins)
			}
		case KindGRTC:
			if d.Channels > periph.GRTCMaxChannels {
				return fmt.Errorf("peripheral %q: %d channels, at most %d", d.Name, d.Channels, periph.GRTCMaxChannels)
			}
		case KindNVIC:
			nvics++
			if d.Lines > periph.NVICMaxLines {
				return fmt.Errorf("peripheral %q: %d lines, at most %d", d.Name, d.Lines, periph.NVICMaxLines)
			}
			lines = d.Lines
			if lines == 0 {
				lines = defaultNVICLines
			}
		}
	}
	if nvics > 1 {
		return errors.New("at most one nvic may be described")
	}
	for _, d := range t.Peripherals {
		if d.IRQ != nil && *d.IRQ >= lines {
			return fmt.Errorf("peripheral %q: irq %d out of range, the nvic has %d lines", d.Name, *d.IRQ, lines)
		}
	}
	return nil
}

// Has reports whether the table describes a peripheral of kind k.
func (t Table) Has(k Kind) bool {
	for _, d := range t.Peripherals {
		if d.Kind == k {
			return true
		}
	}
	return false
}

// IRQ returns a pointer to n, for filling in Descriptor.IRQ.
func IRQ(n uint32) *uint32 {
	return &n
}
