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

//go:build tinygo && cortexm
// +build tinygo,cortexm

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/radboot/radboot/armv8m"
	"github.com/radboot/radboot/handoff"
	"github.com/radboot/radboot/loader"
	"github.com/radboot/radboot/periph"
	"github.com/radboot/radboot/platform/nrf54h20"
	"github.com/radboot/radboot/quiesce"
	"github.com/radboot/radboot/regs"
)

// Set with -ldflags "-X main.USBDiagnostics=true".
var (
	USBDiagnostics    string
	DiagnosticsWindow string
)

func main() {
	banner(nrf54h20.Table().SoC)

	bus := regs.MMIO{}
	core := armv8m.New(bus, armv8m.Native{}, true)
	p := nrf54h20.Platform(bus, core)

	opts := loader.Opts{
		USBDiagnostics:    parseBool("USBDiagnostics", USBDiagnostics, false),
		DiagnosticsWindow: parseDuration("DiagnosticsWindow", DiagnosticsWindow, 5*time.Second),
		Quiesce:           quiesce.Options{},
		Handoff: handoff.Opts{
			StrictVector: parseBool("StrictVector", StrictVector, false),
		},
	}
	err := loader.Run(context.Background(), p, opts)
	haltAndCatchFire(bus, fmt.Sprintf("radboot: handoff failed: %v", err), 3)
}

// haltAndCatchFire blinks the liveness pin code times, forever.
func haltAndCatchFire(bus regs.Bus, msg string, code int) {
	glog.Error(msg)
	glog.Flush()

	pin := nrf54h20.LivenessPin
	var g *periph.GPIO
	for _, d := range nrf54h20.Table().Peripherals {
		if d.Kind == quiesce.KindGPIO && d.Port == pin.Port {
			g = periph.NewGPIO(bus, uint32(d.Base), d.Port, d.Pins)
		}
	}
	if g == nil {
		for {
			time.Sleep(time.Second)
		}
	}
	g.ConfigOutput(pin.Pin)

	on, off := 200*time.Millisecond, 300*time.Millisecond
	space := 300 * time.Millisecond
	for {
		g.ClearPin(pin.Pin)
		time.Sleep(2 * space)
		for i := 0; i < code; i++ {
			g.SetPin(pin.Pin)
			time.Sleep(on)
			g.ClearPin(pin.Pin)
			time.Sleep(off)
		}
	}
}
