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

package emu

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/radboot/radboot/handoff"
	"github.com/radboot/radboot/loader"
	"github.com/radboot/radboot/platform/nrf54h20"
	"github.com/radboot/radboot/quiesce"
)

// answer is a wasm module exporting "main", which returns 42.
var answer = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7e,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x08, 0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00,
	0x0a, 0x06, 0x01, 0x04, 0x00, 0x42, 0x2a, 0x0b,
}

const testSP = 0x20040000

func testOpts(img []byte) Opts {
	return Opts{
		Table:           nrf54h20.Table(),
		StorageBase:     nrf54h20.MRAMBase,
		PartitionOffset: nrf54h20.AppPartitionOffset,
		Image:           img,
		LivenessPin:     nrf54h20.LivenessPin,
		DebugPin:        nrf54h20.DebugPin,
		Loader: loader.Opts{
			Quiesce: quiesce.Options{Sleep: func(time.Duration) {}},
			Handoff: handoff.Opts{StrictVector: true, Sleep: func(time.Duration) {}},
		},
	}
}

func TestPackUnpack(t *testing.T) {
	base := nrf54h20.Target()
	img := Pack(base, testSP, answer)
	if got, want := len(img), HeaderSize+len(answer); got != want {
		t.Fatalf("len(Pack()) = %d, want %d", got, want)
	}
	vt, payload, err := Unpack(img)
	if err != nil {
		t.Fatalf("Unpack(): %v", err)
	}
	if diff := cmp.Diff(handoff.VectorTable{InitialSP: testSP, ResetVector: (base + HeaderSize) | 1}, vt); diff != "" {
		t.Errorf("vector table diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(answer, payload); diff != "" {
		t.Errorf("payload diff (-want +got):\n%s", diff)
	}
	if err := vt.Validate(); err != nil {
		t.Errorf("Validate(): %v", err)
	}
}

func TestUnpackErrors(t *testing.T) {
	long := Pack(0, testSP, answer)
	binary.LittleEndian.PutUint32(long[offLength:], 0xFFFF)
	for _, test := range []struct {
		desc string
		img  []byte
	}{
		{desc: "short", img: make([]byte, 8)},
		{desc: "no header", img: make([]byte, HeaderSize+4)},
		{desc: "length past end", img: long},
	} {
		t.Run(test.desc, func(t *testing.T) {
			if _, _, err := Unpack(test.img); err == nil {
				t.Error("Unpack(): want error, got nil")
			}
		})
	}
}

func TestBoot(t *testing.T) {
	target := nrf54h20.Target()
	res, err := Boot(context.Background(), testOpts(Pack(target, testSP, answer)))
	if err != nil {
		t.Fatalf("Boot(): %v", err)
	}
	want := Result{SP: testSP, Entry: target + HeaderSize, Return: 42}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Boot() diff (-want +got):\n%s", diff)
	}
}

func TestBootErrors(t *testing.T) {
	target := nrf54h20.Target()
	elsewhere := Pack(target, testSP, answer)
	binary.LittleEndian.PutUint32(elsewhere[4:], (target+0x1000)|1)
	for _, test := range []struct {
		desc string
		img  []byte
		want error
	}{
		{desc: "blank", img: make([]byte, HeaderSize), want: handoff.ErrNoStack},
		{desc: "entry outside payload", img: elsewhere},
		{desc: "not wasm", img: Pack(target, testSP, []byte("hello"))},
	} {
		t.Run(test.desc, func(t *testing.T) {
			_, err := Boot(context.Background(), testOpts(test.img))
			if err == nil {
				t.Fatal("Boot(): want error, got nil")
			}
			if test.want != nil && !errors.Is(err, test.want) {
				t.Errorf("Boot(): got %v, want %v", err, test.want)
			}
		})
	}
}
