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

// Package usbd is a minimal device-mode USB stack for the diagnostics
// window. It brings the controller up, connects to the host and tracks bus
// events; it has to be stopped before the controller is torn down for the
// handoff.
package usbd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/radboot/radboot/periph"
	"github.com/radboot/radboot/regs"
)

var (
	// ErrNotReady is returned when the controller can't be brought up.
	ErrNotReady = errors.New("usb controller not ready")
	// ErrNotEnabled is returned by operations which need an enabled device.
	ErrNotEnabled = errors.New("usb device not enabled")
	// ErrShutdown is returned once the stack has been shut down.
	ErrShutdown = errors.New("usb stack shut down")
)

// Options configures a Device.
type Options struct {
	// ResetPolls bounds the wait for the core soft reset.
	ResetPolls int
	// PollInterval is how often Serve checks for bus events.
	PollInterval time.Duration
}

// Stats counts the bus events seen by Serve.
type Stats struct {
	Resets       int
	Enumerations int
	Suspends     int
}

// Device is the device side of the diagnostics link.
type Device struct {
	usb  *periph.USBHS
	opts Options

	mu       sync.Mutex
	enabled  bool
	shutdown bool
	stats    Stats
}

// New returns a Device driving the USBHS controller at base.
func New(b regs.Bus, base uint32, opts Options) *Device {
	if opts.ResetPolls <= 0 {
		opts.ResetPolls = 100000
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Millisecond
	}
	return &Device{usb: periph.NewUSBHS(b, base), opts: opts}
}

// Enable resets the controller and connects to the host.
func (d *Device) Enable() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shutdown {
		return ErrShutdown
	}
	if d.enabled {
		return nil
	}
	u := d.usb
	if !u.Powered() {
		return fmt.Errorf("%w: no core at 0x%08x", ErrNotReady, u.Base)
	}
	if !u.CoreReset(d.opts.ResetPolls) {
		return fmt.Errorf("%w: core soft reset timed out", ErrNotReady)
	}
	u.SoftDisconnect()
	u.Dcfg.Set(periph.DcfgDevSpdHS)
	u.Gintsts.Set(regs.AllBits)
	u.Gintmsk.Set(periph.GintUSBRst | periph.GintEnumDone | periph.GintUSBSusp)
	u.Gahbcfg.SetBits(periph.GahbcfgGlblIntrEn)
	u.SoftConnect()
	d.enabled = true
	glog.Info("USB device support enabled")
	return nil
}

// Disable disconnects from the host and masks the controller's interrupts.
func (d *Device) Disable() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disableLocked()
}

func (d *Device) disableLocked() error {
	if d.shutdown {
		return ErrShutdown
	}
	if !d.enabled {
		return ErrNotEnabled
	}
	d.usb.SoftDisconnect()
	d.usb.Gintmsk.Set(0)
	d.usb.Gahbcfg.ClearBits(periph.GahbcfgGlblIntrEn)
	d.enabled = false
	glog.V(1).Info("usbd: disabled")
	return nil
}

// Shutdown releases the stack. The device can't be used afterwards.
func (d *Device) Shutdown() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shutdown {
		return ErrShutdown
	}
	if d.enabled {
		if err := d.disableLocked(); err != nil {
			return err
		}
	}
	d.shutdown = true
	glog.V(1).Info("usbd: shut down")
	return nil
}

// Serve handles bus events until ctx is done.
func (d *Device) Serve(ctx context.Context) error {
	t := time.NewTicker(d.opts.PollInterval)
	defer t.Stop()
	for {
		if err := d.poll(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

func (d *Device) poll() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shutdown {
		return ErrShutdown
	}
	if !d.enabled {
		return ErrNotEnabled
	}
	pending := d.usb.Gintsts.Get() & d.usb.Gintmsk.Get()
	if pending == 0 {
		return nil
	}
	if pending&periph.GintUSBRst != 0 {
		d.stats.Resets++
		glog.V(1).Info("usbd: bus reset")
	}
	if pending&periph.GintEnumDone != 0 {
		d.stats.Enumerations++
		glog.Infof("usbd: enumerated, DSTS=0x%08x", d.usb.Dsts.Get())
	}
	if pending&periph.GintUSBSusp != 0 {
		d.stats.Suspends++
		glog.V(1).Info("usbd: suspended")
	}
	d.usb.Gintsts.Set(pending)
	return nil
}

// Stats returns the events seen so far.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}
