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

// radboot_emu runs the loader against a simulated radio core and then runs
// the wasm payload of the image it hands off to.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"
	"github.com/radboot/radboot/cmd/radboot_emu/emu"
	"github.com/radboot/radboot/handoff"
	"github.com/radboot/radboot/internal/simsoc"
	"github.com/radboot/radboot/loader"
	"github.com/radboot/radboot/platform/nrf54h20"
	"github.com/radboot/radboot/quiesce"
)

var (
	payload        = flag.String("payload", "", "Path to a wasm module to pack into an image.")
	image          = flag.String("image", "", "Path to a prebuilt image, used instead of --payload.")
	tablePath      = flag.String("table", "", "Path to a peripheral capability table. Defaults to the nRF54H20 radio core table.")
	entryPoint     = flag.String("entry_point", "main", "Exported function of the payload to run.")
	debugHigh      = flag.Bool("debug_pin_high", false, "Present a high level on the debug pin.")
	usbDiagnostics = flag.Bool("usb_diagnostics", false, "Bring up the USB device before handing off.")
	diagWindow     = flag.Duration("diagnostics_window", time.Second, "How long USB diagnostics run for.")
	strict         = flag.Bool("strict_vector", true, "Refuse to hand off to an image with an implausible vector table.")
	stuckUSB       = flag.Bool("stuck_usb_reset", false, "Simulate a USB core whose soft reset never completes.")

	storageBase     = addr32(nrf54h20.MRAMBase)
	partitionOffset = addr32(nrf54h20.AppPartitionOffset)
	stackPointer    = addr32(0x20040000)
)

func init() {
	flag.Var(&storageBase, "storage_base", "Base address of the storage holding the image.")
	flag.Var(&partitionOffset, "partition_offset", "Offset of the image partition within storage.")
	flag.Var(&stackPointer, "sp", "Initial stack pointer written into packed images.")
}

// addr32 is a flag holding a 32-bit address, in any base strconv accepts.
type addr32 uint32

func (a *addr32) String() string { return fmt.Sprintf("0x%08x", uint32(*a)) }

func (a *addr32) Set(s string) error {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return fmt.Errorf("not a 32-bit address: %w", err)
	}
	*a = addr32(v)
	return nil
}

func main() {
	flag.Parse()

	table := nrf54h20.Table()
	if *tablePath != "" {
		var err error
		if table, err = quiesce.ReadTable(*tablePath); err != nil {
			glog.Exitf("Failed to read table: %v", err)
		}
	}

	target := handoff.ImageAddress(uint32(storageBase), uint32(partitionOffset))
	var img []byte
	switch {
	case *image != "":
		b, err := os.ReadFile(*image)
		if err != nil {
			glog.Exitf("Failed to read image: %v", err)
		}
		img = b
	case *payload != "":
		b, err := os.ReadFile(*payload)
		if err != nil {
			glog.Exitf("Failed to read payload: %v", err)
		}
		img = emu.Pack(target, uint32(stackPointer), b)
	default:
		glog.Exit("One of --payload or --image is required")
	}

	res, err := emu.Boot(context.Background(), emu.Opts{
		Table:           table,
		StorageBase:     uint32(storageBase),
		PartitionOffset: uint32(partitionOffset),
		Image:           img,
		LivenessPin:     nrf54h20.LivenessPin,
		DebugPin:        nrf54h20.DebugPin,
		DebugHigh:       *debugHigh,
		EntryPoint:      *entryPoint,
		SoC:             simsoc.Options{USBResetStuck: *stuckUSB},
		Loader: loader.Opts{
			USBDiagnostics:    *usbDiagnostics,
			DiagnosticsWindow: *diagWindow,
			Handoff:           handoff.Opts{StrictVector: *strict},
		},
	})
	if err != nil {
		glog.Exitf("boot: %v", err)
	}
	if len(res.Residues) > 0 {
		glog.Exitf("%d peripheral registers were not quiesced at handoff", len(res.Residues))
	}
	glog.Infof("Payload at 0x%08x returned %d", res.Entry, res.Return)
}
