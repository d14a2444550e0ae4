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

package armv8m

// jumpAsm loads MSP, drops to privileged thread mode on MSP and branches.
// Every register it touches is an operand, since TinyGo's inline assembly
// declares no clobbers and may place any operand in any low register.
const jumpAsm = `
	msr msp, {sp}
	msr control, {zero}
	isb 0xF
	bx {pc}
`
