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

package nrf54h20

import (
	"testing"

	"github.com/radboot/radboot/quiesce"
)

func TestTable(t *testing.T) {
	tb := Table()
	if err := tb.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for _, k := range []quiesce.Kind{quiesce.KindRTC, quiesce.KindGRTC, quiesce.KindUARTE, quiesce.KindDPPIC, quiesce.KindClock, quiesce.KindUSBHS, quiesce.KindGPIO, quiesce.KindNVIC} {
		if !tb.Has(k) {
			t.Errorf("table has no %s", k)
		}
	}
	var usb bool
	for _, d := range tb.Peripherals {
		if d.Kind == quiesce.KindUSBHS {
			usb = uint32(d.Base) == USBHSBase
		}
	}
	if !usb {
		t.Errorf("USBHS not at 0x%08x", USBHSBase)
	}
}

func TestPinsHaveBanks(t *testing.T) {
	tb := Table()
	for _, p := range []struct {
		name string
		port uint32
		pin  uint32
	}{
		{"liveness", LivenessPin.Port, LivenessPin.Pin},
		{"debug", DebugPin.Port, DebugPin.Pin},
	} {
		found := false
		for _, d := range tb.Peripherals {
			if d.Kind == quiesce.KindGPIO && d.Port == p.port && p.pin < d.Pins {
				found = true
			}
		}
		if !found {
			t.Errorf("%s pin P%d.%02d has no GPIO bank", p.name, p.port, p.pin)
		}
	}
}

func TestTarget(t *testing.T) {
	if got, want := Target(), uint32(0x0E054000); got != want {
		t.Errorf("Target() = 0x%08x, want 0x%08x", got, want)
	}
}
