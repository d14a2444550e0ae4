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

package periph

import "github.com/radboot/radboot/regs"

// DWC2 core register offsets.
const (
	usbGotgctl  = 0x000
	usbGahbcfg  = 0x008
	usbGusbcfg  = 0x00C
	usbGrstctl  = 0x010
	usbGintsts  = 0x014
	usbGintmsk  = 0x018
	usbGsnpsid  = 0x040
	usbDcfg     = 0x800
	usbDctl     = 0x804
	usbDsts     = 0x808
	usbDiepmsk  = 0x810
	usbDoepmsk  = 0x814
	usbDaint    = 0x818
	usbDaintmsk = 0x81C
)

// GRSTCTL bits.
const (
	GrstctlCSftRst = 1 << 0
	GrstctlAHBIdle = 1 << 31
)

// DCTL bits.
const (
	DctlSftDiscon = 1 << 1
)

// DCFG bits.
const (
	DcfgDevSpdHS = 0
)

// GINTSTS/GINTMSK bits.
const (
	GintUSBSusp  = 1 << 11
	GintUSBRst   = 1 << 12
	GintEnumDone = 1 << 13
	GintIEPInt   = 1 << 18
	GintOEPInt   = 1 << 19
)

// GAHBCFG bits.
const (
	GahbcfgGlblIntrEn = 1 << 0
)

// Synopsys core ID signature in the top half of GSNPSID. An unclocked or
// unpowered core reads back zero.
const (
	SNPSIDMask      = 0xFFFF0000
	SNPSIDSignature = 0x4F540000
)

// USBHS is a high-speed USB controller built on a DWC2 core.
type USBHS struct {
	Base uint32

	Gotgctl  regs.Register
	Gahbcfg  regs.Register
	Gusbcfg  regs.Register
	Grstctl  regs.Register
	Gintsts  regs.Register
	Gintmsk  regs.Register
	Gsnpsid  regs.Register
	Dcfg     regs.Register
	Dctl     regs.Register
	Dsts     regs.Register
	Diepmsk  regs.Register
	Doepmsk  regs.Register
	Daint    regs.Register
	Daintmsk regs.Register
}

// NewUSBHS returns the controller whose core registers start at base.
func NewUSBHS(b regs.Bus, base uint32) *USBHS {
	return &USBHS{
		Base:     base,
		Gotgctl:  regs.Reg(b, base+usbGotgctl),
		Gahbcfg:  regs.Reg(b, base+usbGahbcfg),
		Gusbcfg:  regs.Reg(b, base+usbGusbcfg),
		Grstctl:  regs.Reg(b, base+usbGrstctl),
		Gintsts:  regs.Reg(b, base+usbGintsts),
		Gintmsk:  regs.Reg(b, base+usbGintmsk),
		Gsnpsid:  regs.Reg(b, base+usbGsnpsid),
		Dcfg:     regs.Reg(b, base+usbDcfg),
		Dctl:     regs.Reg(b, base+usbDctl),
		Dsts:     regs.Reg(b, base+usbDsts),
		Diepmsk:  regs.Reg(b, base+usbDiepmsk),
		Doepmsk:  regs.Reg(b, base+usbDoepmsk),
		Daint:    regs.Reg(b, base+usbDaint),
		Daintmsk: regs.Reg(b, base+usbDaintmsk),
	}
}

// Powered reports whether the core responds with its ID signature.
func (u *USBHS) Powered() bool {
	return u.Gsnpsid.Get()&SNPSIDMask == SNPSIDSignature
}

// SoftDisconnect logically detaches the device from the host.
func (u *USBHS) SoftDisconnect() {
	u.Dctl.SetBits(DctlSftDiscon)
}

// SoftConnect clears the soft disconnect.
func (u *USBHS) SoftConnect() {
	u.Dctl.ClearBits(DctlSftDiscon)
}

// MaskAll masks every core and endpoint interrupt source.
func (u *USBHS) MaskAll() {
	u.Gintmsk.Set(0)
	u.Diepmsk.Set(0)
	u.Doepmsk.Set(0)
	u.Daintmsk.Set(0)
}

// StartCoreReset requests a core soft reset.
func (u *USBHS) StartCoreReset() {
	u.Grstctl.SetBits(GrstctlCSftRst)
}

// CoreResetDone reports whether a requested soft reset has completed.
func (u *USBHS) CoreResetDone() bool {
	return u.Grstctl.Get()&GrstctlCSftRst == 0
}

// CoreReset requests a soft reset and polls for completion at most polls
// times. It reports whether the reset completed.
func (u *USBHS) CoreReset(polls int) bool {
	u.StartCoreReset()
	for i := 0; i < polls; i++ {
		if u.CoreResetDone() {
			return true
		}
	}
	return false
}
