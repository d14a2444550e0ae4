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

//go:build tinygo && cortexm
// +build tinygo,cortexm

package armv8m

import "device/arm"

// Native implements Special with inline assembly.
type Native struct{}

var _ Special = Native{}

func (Native) DSB() { arm.Asm("dsb 0xF") }

func (Native) ISB() { arm.Asm("isb 0xF") }

func (Native) SetPSPLIM(v uint32) {
	arm.AsmFull("msr psplim, {v}", map[string]interface{}{"v": v})
}

func (Native) SetMSPLIM(v uint32) {
	arm.AsmFull("msr msplim, {v}", map[string]interface{}{"v": v})
}

func (Native) Jump(sp, pc uint32) {
	arm.AsmFull(jumpAsm, map[string]interface{}{"sp": sp, "pc": pc, "zero": uint32(0)})
}
