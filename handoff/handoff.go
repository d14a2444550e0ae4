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

// Package handoff transfers control from the loader to the next image.
//
// The sequence is one-shot and linear: tear down the diagnostic USB stack,
// quiesce the peripherals, let in-flight events drain, flush and disable
// the caches, clear the MPU, reset the stack limits, then load the new
// stack pointer and branch to the reset vector. Handoff only returns if the
// target is rejected before anything has been touched.
package handoff

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/radboot/radboot/regs"
)

// ErrStarted is returned by a second call to Handoff.
var ErrStarted = errors.New("handoff already started")

// Core is the processor the loader is running on.
type Core interface {
	FlushICache()
	FlushDCache()
	DisableICache()
	DisableDCache()
	ClearMPU()
	// ResetStackLimits reports false if the core has no stack limit
	// registers.
	ResetStackLimits() bool
	// Jump loads the main stack pointer, clears CONTROL and branches. It
	// doesn't return.
	Jump(sp, pc uint32)
}

// Quiescer drives all peripherals to their reset baseline.
type Quiescer interface {
	QuiesceAll()
}

// USBStack is a running USB device stack which must be stopped before the
// controller is torn down underneath it.
type USBStack interface {
	Disable() error
	Shutdown() error
}

// Opts configures a Sequencer.
type Opts struct {
	// StackSettle is the wait after shutting down the USB stack.
	StackSettle time.Duration
	// Drain is the wait after quiescing, for routed events and VBUS
	// detection to settle.
	Drain time.Duration
	// StrictVector rejects a target whose vector table fails validation
	// instead of logging and jumping anyway.
	StrictVector bool
	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)
	// OnState, if set, is called on entry to every state.
	OnState func(State)
}

const (
	defaultStackSettle = time.Second
	defaultDrain       = 500 * time.Millisecond
)

// Sequencer performs the handoff.
type Sequencer struct {
	bus  regs.Bus
	core Core
	q    Quiescer
	opts Opts

	mu      sync.Mutex
	state   State
	started bool
}

// New returns a Sequencer which reads vector tables from b.
func New(b regs.Bus, c Core, q Quiescer, opts Opts) *Sequencer {
	if opts.StackSettle == 0 {
		opts.StackSettle = defaultStackSettle
	}
	if opts.Drain == 0 {
		opts.Drain = defaultDrain
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	return &Sequencer{bus: b, core: c, q: q, opts: opts}
}

// State returns the current state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Sequencer) enter(st State) {
	s.mu.Lock()
	if st <= s.state && st != StateStart {
		s.mu.Unlock()
		panic(fmt.Sprintf("handoff: state %v entered after %v", st, s.state))
	}
	s.state = st
	s.mu.Unlock()
	glog.V(1).Infof("handoff: %v", st)
	if s.opts.OnState != nil {
		s.opts.OnState(st)
	}
}

// Handoff transfers control to the image whose vector table is at target.
//
// stack is the diagnostic USB stack, or nil if none was brought up. It is
// disabled and shut down before any raw USB controller register is written.
//
// On success Handoff never returns. An error is returned only when the
// target is rejected, in which case no hardware has been touched, or when
// the handoff was already started.
func (s *Sequencer) Handoff(target uint32, stack USBStack) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrStarted
	}
	s.started = true
	s.mu.Unlock()

	s.enter(StateStart)
	vt := ReadVectorTable(s.bus, target)
	glog.Infof("Jumping to image at address 0x%08x", target)
	glog.Infof("Stack pointer: 0x%08x", vt.InitialSP)
	glog.Infof("Reset vector: 0x%08x", vt.ResetVector)
	if err := vt.Validate(); err != nil {
		if s.opts.StrictVector {
			return fmt.Errorf("image at 0x%08x rejected: %w", target, err)
		}
		glog.Warningf("Image at 0x%08x has a suspicious vector table, starting it anyway: %v", target, err)
	}

	if stack != nil {
		s.enter(StateUSBStackTeardown)
		glog.Info("Shutting down USB")
		if err := stack.Disable(); err != nil {
			glog.Warningf("Failed to disable USB stack: %v", err)
		}
		if err := stack.Shutdown(); err != nil {
			glog.Warningf("Failed to shut down USB stack: %v", err)
		}
		s.opts.Sleep(s.opts.StackSettle)
	}

	s.enter(StateQuiescePeripherals)
	s.q.QuiesceAll()

	s.enter(StateDrainDelay)
	s.opts.Sleep(s.opts.Drain)
	glog.Info("GPIO and peripheral cleanup completed")

	s.enter(StateCacheFlush)
	s.core.FlushICache()
	s.core.FlushDCache()

	s.enter(StateCacheDisable)
	s.core.DisableICache()
	s.core.DisableDCache()

	s.enter(StateMPUClear)
	s.core.ClearMPU()

	s.enter(StateStackGuardReset)
	if !s.core.ResetStackLimits() {
		glog.V(1).Info("handoff: no stack limit registers")
	}

	// Loading MSP and branching happen in a single step: nothing on the
	// current stack may be used once MSP has moved.
	s.enter(StateRegisterLoad)
	s.enter(StateBranch)
	glog.Flush()
	s.core.Jump(vt.InitialSP, vt.ResetVector)

	panic("handoff: returned from jump to next image")
}
