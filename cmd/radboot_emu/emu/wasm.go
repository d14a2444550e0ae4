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
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/perlin-network/life/exec"
	wasm_validation "github.com/perlin-network/life/wasm-validation"
)

// Resolver supplies the "env" imports of a payload. A payload can log, and
// can read the stack pointer and entry address it was started with.
type Resolver struct {
	SP    uint32
	Entry uint32
}

// ResolveFunc implements exec.ImportResolver.
func (r *Resolver) ResolveFunc(module, field string) exec.FunctionImport {
	if module != "env" {
		panic(fmt.Errorf("payload imports unknown module %q", module))
	}
	switch field {
	case "__life_ping":
		return func(vm *exec.VirtualMachine) int64 {
			return vm.GetCurrentFrame().Locals[0] + 1
		}
	case "__life_log":
		return func(vm *exec.VirtualMachine) int64 {
			l := vm.GetCurrentFrame().Locals
			msg, ok := span(vm.Memory, l[0], l[1])
			if !ok {
				glog.Warningf("[payload] log: span 0x%x+%d outside memory", l[0], l[1])
				return -1
			}
			glog.Infof("[payload] %s", msg)
			return 0
		}
	case "print":
		return func(vm *exec.VirtualMachine) int64 {
			ptr := vm.GetCurrentFrame().Locals[0]
			msg, ok := cstring(vm.Memory, ptr)
			if !ok {
				glog.Warningf("[payload] print: unterminated string at 0x%x", ptr)
				return -1
			}
			glog.Infof("[payload] %s", msg)
			return 0
		}
	case "print_i64":
		return func(vm *exec.VirtualMachine) int64 {
			glog.Infof("[payload] %d", vm.GetCurrentFrame().Locals[0])
			return 0
		}
	}
	panic(fmt.Errorf("payload imports unknown function %q", field))
}

// ResolveGlobal implements exec.ImportResolver.
func (r *Resolver) ResolveGlobal(module, field string) int64 {
	if module == "env" {
		switch field {
		case "__radboot_sp":
			return int64(r.SP)
		case "__radboot_entry":
			return int64(r.Entry)
		}
	}
	panic(fmt.Errorf("payload imports unknown global %s.%s", module, field))
}

// span returns mem[ptr:ptr+n], or false if that isn't inside mem.
func span(mem []byte, ptr, n int64) (string, bool) {
	p, l := uint64(uint32(ptr)), uint64(uint32(n))
	if p+l > uint64(len(mem)) {
		return "", false
	}
	return string(mem[p : p+l]), true
}

// cstring returns the NUL-terminated string at ptr, or false if it runs off
// the end of mem.
func cstring(mem []byte, ptr int64) (string, bool) {
	p := int(uint32(ptr))
	for n := p; n < len(mem); n++ {
		if mem[n] == 0 {
			return string(mem[p:n]), true
		}
	}
	return "", false
}

// bootWasm runs the start function of payload, if it has one, and then the
// export named entryPoint, returning its result.
func bootWasm(r *Resolver, entryPoint string, payload []byte) (int64, error) {
	if err := wasm_validation.ValidateWasm(payload); err != nil {
		return 0, fmt.Errorf("invalid payload: %w", err)
	}
	vm, err := exec.NewVirtualMachine(payload, exec.VMConfig{
		DefaultMemoryPages: 128,
		DefaultTableSize:   65536,
	}, r, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to instantiate payload: %w", err)
	}
	entry, ok := vm.GetFunctionExport(entryPoint)
	if !ok {
		return 0, fmt.Errorf("payload has no export %q", entryPoint)
	}

	start := time.Now()
	if s := vm.Module.Base.Start; s != nil {
		if _, err := vm.Run(int(s.Index)); err != nil {
			vm.PrintStackTrace()
			return 0, fmt.Errorf("payload start function: %w", err)
		}
	}
	ret, err := vm.Run(entry)
	if err != nil {
		vm.PrintStackTrace()
		return 0, fmt.Errorf("payload %s: %w", entryPoint, err)
	}
	glog.Infof("Payload %s returned %d after %v", entryPoint, ret, time.Since(start))
	return ret, nil
}
