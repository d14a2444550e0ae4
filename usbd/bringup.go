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

package usbd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/glog"
)

// Enabler is something which can be brought up.
type Enabler interface {
	Enable() error
}

// DefaultBackOff retries up to attempts times, starting at 10ms.
func DefaultBackOff(attempts uint64) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second
	return backoff.WithMaxRetries(bo, attempts)
}

// Bringup enables dev, retrying with bo while the controller isn't ready.
// Other errors are returned immediately.
func Bringup(ctx context.Context, dev Enabler, bo backoff.BackOff) error {
	op := func() error {
		err := dev.Enable()
		if err != nil && !errors.Is(err, ErrNotReady) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, d time.Duration) {
		glog.V(1).Infof("usbd: %v, retrying in %v", err, d)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), notify); err != nil {
		return fmt.Errorf("failed to initialize USB device: %w", err)
	}
	return nil
}
