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

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang/glog"
	"github.com/radboot/radboot/armv7a"
	"github.com/radboot/radboot/handoff"
	"github.com/radboot/radboot/regs"
	usbarmory "github.com/usbarmory/tamago/board/usbarmory/mk2"
	"github.com/usbarmory/tamago/soc/nxp/imx6ul"
)

// Target is the address of the image to start, set with
// -ldflags "-X main.Target=0x90000000".
var Target string

// armoryQuiescer puts the few peripherals the loader uses back to rest.
type armoryQuiescer struct{}

func (armoryQuiescer) QuiesceAll() {
	usbarmory.LED("blue", false)
	usbarmory.LED("white", false)

	// RNGB driver doesn't play well with previous initializations
	imx6ul.RNGB.Reset()
}

func main() {
	usbarmory.LED("blue", false)
	usbarmory.LED("white", false)
	banner(imx6ul.Model())

	target, err := strconv.ParseUint(Target, 0, 32)
	if err != nil {
		haltAndCatchFire(fmt.Sprintf("invalid target address %q: %v", Target, err), 1)
	}
	usbarmory.LED("blue", true)

	s := handoff.New(regs.MMIO{}, &armv7a.Core{}, armoryQuiescer{}, handoff.Opts{
		StrictVector: parseBool("StrictVector", StrictVector, true),
	})
	err = s.Handoff(uint32(target), nil)
	haltAndCatchFire(fmt.Sprintf("radboot: handoff failed: %v", err), 3)
}

// blinkOnOff blinks the specified LED on and then off.
func blinkOnOff(led string, on, off time.Duration) {
	usbarmory.LED(led, true)
	<-time.After(on)
	usbarmory.LED(led, false)
	<-time.After(off)
}

// haltAndCatchFire signals for help and never returns.
func haltAndCatchFire(msg string, code int) {
	glog.Error(msg)
	glog.Flush()

	on, off := 200*time.Millisecond, 300*time.Millisecond
	space := 300 * time.Millisecond

	for {
		usbarmory.LED("white", true)
		<-time.After(space)
		for i := 0; i < code; i++ {
			blinkOnOff("blue", on, off)
		}
		usbarmory.LED("white", false)
		<-time.After(2 * space)
	}
}
