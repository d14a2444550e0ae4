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

//go:build (tinygo && cortexm) || (tamago && arm)
// +build tinygo,cortexm tamago,arm

// radboot is the second stage loader. It quiesces the SoC and hands off to
// the application image.
package main

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/golang/glog"
)

// Set with -ldflags "-X main.Build=... -X main.Revision=...".
var (
	Build    string
	Revision string

	// StrictVector rejects an image with an implausible vector table.
	StrictVector string
)

func banner(board string) {
	glog.Info(fmt.Sprintf("radboot • %s/%s (%s) • %s %s • %s",
		runtime.GOOS, runtime.GOARCH, runtime.Version(),
		Revision, Build,
		board))
}

// parseBool parses an -ldflags setting, returning def if it's unset.
func parseBool(name, v string, def bool) bool {
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(fmt.Sprintf("invalid %s setting %q: %v", name, v, err))
	}
	return b
}

// parseDuration parses an -ldflags setting, returning def if it's unset.
func parseDuration(name, v string, def time.Duration) time.Duration {
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Sprintf("invalid %s setting %q: %v", name, v, err))
	}
	return d
}
