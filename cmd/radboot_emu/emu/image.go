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
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/radboot/radboot/handoff"
)

// Images start with a HeaderSize byte header holding the vector table,
// followed by the payload. The reset vector points at the payload.
const (
	HeaderSize = 0x100

	magic     = 0x41575242 // "BRWA"
	offMagic  = 8
	offLength = 12
)

// Pack builds an image to be placed at base, whose payload starts with the
// stack pointer at sp.
func Pack(base, sp uint32, payload []byte) []byte {
	img := make([]byte, HeaderSize+len(payload))
	binary.LittleEndian.PutUint32(img[0:], sp)
	binary.LittleEndian.PutUint32(img[4:], (base+HeaderSize)|1)
	binary.LittleEndian.PutUint32(img[offMagic:], magic)
	binary.LittleEndian.PutUint32(img[offLength:], uint32(len(payload)))
	copy(img[HeaderSize:], payload)
	return img
}

// Unpack splits an image into its vector table and payload.
func Unpack(img []byte) (handoff.VectorTable, []byte, error) {
	if len(img) < HeaderSize {
		return handoff.VectorTable{}, nil, fmt.Errorf("image too short: %d bytes", len(img))
	}
	vt := handoff.VectorTable{
		InitialSP:   binary.LittleEndian.Uint32(img[0:]),
		ResetVector: binary.LittleEndian.Uint32(img[4:]),
	}
	if binary.LittleEndian.Uint32(img[offMagic:]) != magic {
		return vt, nil, errors.New("image has no payload header")
	}
	n := binary.LittleEndian.Uint32(img[offLength:])
	if int(n) > len(img)-HeaderSize {
		return vt, nil, fmt.Errorf("payload length %d exceeds image", n)
	}
	return vt, img[HeaderSize : HeaderSize+int(n)], nil
}
