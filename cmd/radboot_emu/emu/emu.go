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

// Package emu runs the loader against a simulated SoC and, once it has
// handed off, runs the payload of the image it jumped to.
package emu

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"
	"github.com/radboot/radboot/handoff"
	"github.com/radboot/radboot/internal/simsoc"
	"github.com/radboot/radboot/loader"
	"github.com/radboot/radboot/periph"
	"github.com/radboot/radboot/quiesce"
)

// Opts configures an emulated boot.
type Opts struct {
	Table           quiesce.Table
	StorageBase     uint32
	PartitionOffset uint32
	Image           []byte

	LivenessPin periph.Pin
	DebugPin    periph.Pin
	// DebugHigh is the level presented on the debug pin.
	DebugHigh bool

	// EntryPoint is the wasm export run once control reaches the payload.
	EntryPoint string

	SoC    simsoc.Options
	Loader loader.Opts
}

// Result describes a completed boot.
type Result struct {
	SP    uint32
	Entry uint32
	// Residues is what an audit of the peripherals found at the jump.
	Residues []quiesce.Residue
	// Return is the payload's return value.
	Return int64
}

// ErrNoJump is returned if the loader returned without handing off.
var ErrNoJump = errors.New("loader did not hand off")

// Boot runs the loader and then the payload.
func Boot(ctx context.Context, opts Opts) (Result, error) {
	if opts.EntryPoint == "" {
		opts.EntryPoint = "main"
	}
	target := handoff.ImageAddress(opts.StorageBase, opts.PartitionOffset)

	soc := simsoc.New(opts.Table, opts.SoC)
	soc.Activate()
	soc.SetInput(opts.DebugPin, opts.DebugHigh)
	soc.Load(target, opts.Image)

	var (
		mu     sync.Mutex
		res    Result
		jumped bool
	)
	soc.CPU.OnJump = func(sp, entry uint32) {
		mu.Lock()
		defer mu.Unlock()
		res.SP, res.Entry, jumped = sp, entry, true
	}

	p := loader.Platform{
		Bus:         soc.Bus,
		Core:        soc.Core,
		Table:       opts.Table,
		LivenessPin: opts.LivenessPin,
		DebugPin:    opts.DebugPin,
		Target:      target,
	}
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		errc <- loader.Run(ctx, p, opts.Loader)
	}()
	if err := <-errc; err != nil {
		return Result{}, fmt.Errorf("loader: %w", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if !jumped {
		return Result{}, ErrNoJump
	}

	e, err := quiesce.New(soc.Bus, opts.Table, quiesce.Options{})
	if err != nil {
		return Result{}, err
	}
	res.Residues = e.Audit()
	for _, r := range res.Residues {
		glog.Warningf("Residue at handoff: %v", r)
	}

	_, payload, err := Unpack(opts.Image)
	if err != nil {
		return res, err
	}
	start := target + HeaderSize
	if res.Entry != start {
		return res, fmt.Errorf("jumped to 0x%08x, payload starts at 0x%08x", res.Entry, start)
	}
	glog.Infof("Landed at payload 0x%08x with SP 0x%08x", res.Entry, res.SP)
	res.Return, err = bootWasm(&Resolver{SP: res.SP, Entry: res.Entry}, opts.EntryPoint, payload)
	return res, err
}
