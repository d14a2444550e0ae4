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

// quiesce_check audits, and optionally quiesces, the peripherals described
// by a capability table through /dev/mem.
//
// It exits non-zero if any register is left away from its quiesced value.
package main

import (
	"fmt"
	"io"

	"github.com/radboot/radboot/quiesce"
	"github.com/radboot/radboot/regs"
)

// check audits the peripherals in t, first quiescing them if apply is set,
// and writes each residue to w.
func check(b regs.Bus, t quiesce.Table, apply bool, w io.Writer) ([]quiesce.Residue, error) {
	e, err := quiesce.New(b, t, quiesce.Options{})
	if err != nil {
		return nil, err
	}
	if apply {
		e.QuiesceAll()
	}
	r := e.Audit()
	for _, res := range r {
		if _, err := fmt.Fprintln(w, res); err != nil {
			return r, err
		}
	}
	return r, nil
}
