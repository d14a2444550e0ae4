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

//go:build tamago && arm
// +build tamago,arm

// Package armv7a implements the handoff core for the i.MX6UL Cortex-A7 of
// the USB armory, on top of tamago.
//
// Images follow the same convention as on Cortex-M: the first two words
// are the initial stack pointer and the entry point.
package armv7a

import (
	"sync"

	"github.com/golang/glog"
	"github.com/radboot/radboot/handoff"
	"github.com/usbarmory/tamago/arm"
	"github.com/usbarmory/tamago/soc/nxp/imx6ul"
)

// defined in jump_arm.s
func exec(entry uint32, sp uint32)
func svc()

// Core is the application core of an i.MX6UL.
type Core struct {
	disableCache sync.Once
}

var _ handoff.Core = &Core{}

// FlushICache is done by exec, after the last Go code has run.
func (c *Core) FlushICache() {}

// FlushDCache cleans and invalidates the data cache.
func (c *Core) FlushDCache() {
	imx6ul.ARM.FlushDataCache()
}

// DisableICache disables both caches, tamago only controls them together.
func (c *Core) DisableICache() {
	c.disableCache.Do(imx6ul.ARM.DisableCache)
}

// DisableDCache disables both caches.
func (c *Core) DisableDCache() {
	c.disableCache.Do(imx6ul.ARM.DisableCache)
}

// ClearMPU does nothing: the Cortex-A7 has an MMU, which the next image
// reprograms from scratch.
func (c *Core) ClearMPU() {
	glog.V(1).Info("armv7a: no MPU")
}

// ResetStackLimits reports false; ARMv7-A has no stack limit registers.
func (c *Core) ResetStackLimits() bool {
	return false
}

// Jump enters supervisor mode and branches to pc with the stack at sp.
func (c *Core) Jump(sp, pc uint32) {
	arm.SystemExceptionHandler = func(n int) {
		if n != arm.SUPERVISOR {
			panic("unhandled exception")
		}
		exec(pc, sp)
	}
	svc()
}
