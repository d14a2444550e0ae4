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

// Package nrf54h20 describes the radio core of the nRF54H20 as seen by the
// loader.
package nrf54h20

import (
	_ "embed"

	"github.com/radboot/radboot/handoff"
	"github.com/radboot/radboot/loader"
	"github.com/radboot/radboot/periph"
	"github.com/radboot/radboot/quiesce"
	"github.com/radboot/radboot/regs"
)

// Storage layout. The application image starts with its vector table.
const (
	MRAMBase           = 0x0E000000
	AppPartitionOffset = 0x00054000
)

// USBHSBase is the address of the high-speed USB controller.
const USBHSBase = 0x5F086000

var (
	// LivenessPin is driven high while the loader runs.
	LivenessPin = periph.Pin{Port: 9, Pin: 0}
	// DebugPin is sampled once and logged.
	DebugPin = periph.Pin{Port: 0, Pin: 8}
)

//go:embed cpurad.json
var cpuradTable []byte

// Table returns the capability table of the radio core.
func Table() quiesce.Table {
	t, err := quiesce.ParseTable(cpuradTable)
	if err != nil {
		panic(err)
	}
	return t
}

// TableJSON returns the capability table in its JSON form.
func TableJSON() []byte {
	return append([]byte(nil), cpuradTable...)
}

// Target returns the address of the application image.
func Target() uint32 {
	return handoff.ImageAddress(MRAMBase, AppPartitionOffset)
}

// Platform returns the loader platform for the radio core.
func Platform(b regs.Bus, c handoff.Core) loader.Platform {
	return loader.Platform{
		Bus:         b,
		Core:        c,
		Table:       Table(),
		LivenessPin: LivenessPin,
		DebugPin:    DebugPin,
		Target:      Target(),
	}
}
