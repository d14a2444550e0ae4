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

// Package devmem provides a regs.Bus backed by /dev/mem.
//
// It's intended for bench work on boards where a Linux host shares the
// peripheral bus with the core being handed off, and needs root.
package devmem

import (
	"sync"

	"github.com/golang/glog"
	"github.com/radboot/radboot/regs"
	"github.com/u-root/u-root/pkg/memio"
)

// Bus accesses physical memory through u-root's memio package.
//
// regs.Bus has no error return, so failed accesses read as zero and are
// recorded; callers should check Err once they're done.
type Bus struct {
	mu  sync.Mutex
	err error
}

var _ regs.Bus = &Bus{}

// Read32 reads the word at addr.
func (b *Bus) Read32(addr uint32) uint32 {
	var v memio.Uint32
	if err := memio.Read(int64(addr), &v); err != nil {
		b.record(addr, err)
		return 0
	}
	return uint32(v)
}

// Write32 writes v to addr.
func (b *Bus) Write32(addr uint32, v uint32) {
	w := memio.Uint32(v)
	if err := memio.Write(int64(addr), &w); err != nil {
		b.record(addr, err)
	}
}

// Err returns the first access error seen, if any.
func (b *Bus) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Bus) record(addr uint32, err error) {
	glog.V(1).Infof("devmem: access at 0x%08x failed: %v", addr, err)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err == nil {
		b.err = err
	}
}
