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

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/radboot/radboot/internal/simsoc"
	"github.com/radboot/radboot/platform/nrf54h20"
	"github.com/radboot/radboot/quiesce"
)

func TestCheck(t *testing.T) {
	for _, test := range []struct {
		desc     string
		apply    bool
		wantNone bool
	}{
		{desc: "audit only", apply: false},
		{desc: "apply", apply: true, wantNone: true},
	} {
		t.Run(test.desc, func(t *testing.T) {
			soc := simsoc.New(nrf54h20.Table(), simsoc.Options{})
			soc.Activate()
			var out bytes.Buffer
			r, err := check(soc.Bus, soc.Table, test.apply, &out)
			if err != nil {
				t.Fatalf("check(): %v", err)
			}
			if got := len(r) == 0; got != test.wantNone {
				t.Fatalf("check() returned %d residues, want none: %v", len(r), test.wantNone)
			}
			if got, want := strings.Count(out.String(), "\n"), len(r); got != want {
				t.Errorf("check() wrote %d lines, want %d", got, want)
			}
		})
	}
}

func TestCheckInvalidTable(t *testing.T) {
	soc := simsoc.New(nrf54h20.Table(), simsoc.Options{})
	bad := quiesce.Table{Peripherals: []quiesce.Descriptor{{Name: "x", Kind: "lptimer"}}}
	if _, err := check(soc.Bus, bad, false, &bytes.Buffer{}); err == nil {
		t.Error("check(): want error for invalid table")
	}
}
