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

// Package periph describes the register blocks of the peripherals which
// need to be quiesced before a handoff.
//
// Each block is a set of named registers computed from a base address, so
// callers never do offset arithmetic themselves. Layouts follow the nRF
// task/event/INTENSET/INTENCLR conventions; the USB block is a Synopsys
// DWC2 core and the NVIC block is the ARMv8-M one.
package periph

import "fmt"

// Pin identifies a GPIO pin by port and number within the port.
type Pin struct {
	Port uint32
	Pin  uint32
}

func (p Pin) String() string {
	return fmt.Sprintf("P%d.%02d", p.Port, p.Pin)
}

// PinFromPSEL decodes a peripheral pin-select value.
// ok is false if the value has the disconnect bit set.
func PinFromPSEL(psel uint32) (p Pin, ok bool) {
	if psel&pselConnectMask != 0 {
		return Pin{}, false
	}
	return Pin{Port: (psel >> 5) & 0xF, Pin: psel & 0x1F}, true
}

// PSEL encodes p as a connected pin-select value.
func (p Pin) PSEL() uint32 {
	return (p.Port&0xF)<<5 | p.Pin&0x1F
}

const pselConnectMask = 1 << 31
