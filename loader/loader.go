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

// Package loader runs the second stage: signal liveness, optionally offer a
// USB diagnostics window, then hand off to the application image.
package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/radboot/radboot/handoff"
	"github.com/radboot/radboot/periph"
	"github.com/radboot/radboot/quiesce"
	"github.com/radboot/radboot/regs"
	"github.com/radboot/radboot/usbd"
	"golang.org/x/sync/errgroup"
)

// Platform is the board the loader is running on.
type Platform struct {
	Bus   regs.Bus
	Core  handoff.Core
	Table quiesce.Table

	// LivenessPin is driven high for the lifetime of the loader.
	LivenessPin periph.Pin
	// DebugPin is sampled once at start and logged.
	DebugPin periph.Pin
	// Target is the address of the next image's vector table.
	Target uint32
}

// Opts configures a run.
type Opts struct {
	// USBDiagnostics enables the USB diagnostics window.
	USBDiagnostics bool
	// DiagnosticsWindow is how long the diagnostics link is served.
	DiagnosticsWindow time.Duration
	// BringupAttempts bounds retries of the USB bring-up.
	BringupAttempts uint64
	USB             usbd.Options

	Quiesce quiesce.Options
	Handoff handoff.Opts
}

const (
	defaultDiagnosticsWindow = 5 * time.Second
	defaultBringupAttempts   = 5
)

// Run performs the second stage. It only returns if the platform is
// misdescribed or the handoff is rejected.
func Run(ctx context.Context, p Platform, opts Opts) error {
	if opts.DiagnosticsWindow == 0 {
		opts.DiagnosticsWindow = defaultDiagnosticsWindow
	}
	if opts.BringupAttempts == 0 {
		opts.BringupAttempts = defaultBringupAttempts
	}

	e, err := quiesce.New(p.Bus, p.Table, opts.Quiesce)
	if err != nil {
		return fmt.Errorf("invalid capability table: %w", err)
	}
	live, err := bank(p, p.LivenessPin)
	if err != nil {
		return err
	}
	dbg, err := bank(p, p.DebugPin)
	if err != nil {
		return err
	}

	glog.Info("****************************************")
	glog.Info("rad boot started")
	glog.Info("****************************************")
	live.ConfigOutput(p.LivenessPin.Pin)
	live.SetPin(p.LivenessPin.Pin)

	dbg.ConfigInput(p.DebugPin.Pin)
	level := "LOW"
	if dbg.ReadPin(p.DebugPin.Pin) {
		level = "HIGH"
	}
	glog.Infof("%v is %s", p.DebugPin, level)

	var stack handoff.USBStack
	if opts.USBDiagnostics {
		if dev := diagnostics(ctx, p, opts); dev != nil {
			stack = dev
		}
	}

	s := handoff.New(p.Bus, p.Core, e, opts.Handoff)
	return s.Handoff(p.Target, stack)
}

// diagnostics brings up the USB stack and serves it for the diagnostics
// window. It returns nil if the stack couldn't be brought up.
func diagnostics(ctx context.Context, p Platform, opts Opts) *usbd.Device {
	var base uint32
	for _, d := range p.Table.Peripherals {
		if d.Kind == quiesce.KindUSBHS {
			base = uint32(d.Base)
			break
		}
	}
	if base == 0 {
		glog.Warning("USB diagnostics requested but the platform has no USB controller")
		return nil
	}

	dev := usbd.New(p.Bus, base, opts.USB)
	if err := usbd.Bringup(ctx, dev, usbd.DefaultBackOff(opts.BringupAttempts)); err != nil {
		glog.Warningf("Continuing without USB diagnostics: %v", err)
		return nil
	}

	wctx, cancel := context.WithTimeout(ctx, opts.DiagnosticsWindow)
	defer cancel()
	g, gctx := errgroup.WithContext(wctx)
	g.Go(func() error {
		return dev.Serve(gctx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		glog.Warningf("USB diagnostics ended early: %v", err)
	}
	glog.Infof("USB diagnostics window closed: %+v", dev.Stats())
	return dev
}

func bank(p Platform, pin periph.Pin) (*periph.GPIO, error) {
	for _, d := range p.Table.Peripherals {
		if d.Kind == quiesce.KindGPIO && d.Port == pin.Port {
			pins := d.Pins
			if pins == 0 {
				pins = periph.MaxPins
			}
			if pin.Pin >= pins {
				return nil, fmt.Errorf("pin %v: port %d has %d pins", pin, pin.Port, pins)
			}
			return periph.NewGPIO(p.Bus, uint32(d.Base), d.Port, pins), nil
		}
	}
	return nil, fmt.Errorf("pin %v: no GPIO bank for port %d", pin, pin.Port)
}
