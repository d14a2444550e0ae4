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

package handoff

import "fmt"

// State is a step of the handoff. States only ever advance.
type State int

const (
	StateStart State = iota
	StateUSBStackTeardown
	StateQuiescePeripherals
	StateDrainDelay
	StateCacheFlush
	StateCacheDisable
	StateMPUClear
	StateStackGuardReset
	StateRegisterLoad
	StateBranch
)

var stateNames = [...]string{
	StateStart:              "Start",
	StateUSBStackTeardown:   "USBStackTeardown",
	StateQuiescePeripherals: "QuiescePeripherals",
	StateDrainDelay:         "DrainDelay",
	StateCacheFlush:         "CacheFlush",
	StateCacheDisable:       "CacheDisable",
	StateMPUClear:           "MPUClear",
	StateStackGuardReset:    "StackGuardReset",
	StateRegisterLoad:       "RegisterLoad",
	StateBranch:             "Branch",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}
