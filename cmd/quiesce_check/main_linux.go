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

//go:build linux
// +build linux

package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/radboot/radboot/platform/nrf54h20"
	"github.com/radboot/radboot/quiesce"
	"github.com/radboot/radboot/regs/devmem"
)

var (
	tablePath = flag.String("table", "", "Path to a peripheral capability table. Defaults to the nRF54H20 radio core table.")
	apply     = flag.Bool("apply", false, "Quiesce the peripherals before auditing them.")
)

func main() {
	flag.Parse()

	t := nrf54h20.Table()
	if *tablePath != "" {
		var err error
		if t, err = quiesce.ReadTable(*tablePath); err != nil {
			glog.Exitf("Failed to read table: %v", err)
		}
	}

	bus := &devmem.Bus{}
	r, err := check(bus, t, *apply, os.Stdout)
	if err != nil {
		glog.Exitf("check: %v", err)
	}
	if err := bus.Err(); err != nil {
		glog.Exitf("Failed to access peripherals: %v", err)
	}
	if len(r) > 0 {
		glog.Exitf("%d registers not quiesced", len(r))
	}
	glog.Info("All peripherals quiesced")
}
