// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package teleop

import (
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
)

// Controller applies controller states to the wheel and kicker drivers.
// The kicker may live on its own link or share the wheels' bus at another
// address; it is optional.
type Controller struct {
	wheels *roboclaw.Roboclaw
	kicker *roboclaw.Roboclaw

	mu    sync.Mutex
	mixer Mixer
}

// NewController creates a controller. kicker may be nil.
func NewController(wheels, kicker *roboclaw.Roboclaw) (*Controller, error) {
	if wheels == nil {
		return nil, fmt.Errorf("teleop: wheels driver is required")
	}
	return &Controller{wheels: wheels, kicker: kicker}, nil
}

// Apply drives the motors for one controller state. A state with MotorKill
// set stops every motor instead.
func (c *Controller) Apply(s ControllerState) error {
	if s.MotorKill {
		return c.Kill()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.mixer.Mix(s)
	if glog.V(2) {
		glog.Infof("teleop: right=%d left=%d kicker=%d (changed=%v)", out.Right, out.Left, out.Kicker, out.KickerChanged)
	}

	if err := c.wheels.ForwardBackwardM1(out.Right); err != nil {
		return fmt.Errorf("right wheel: %w", err)
	}
	if err := c.wheels.ForwardBackwardM2(out.Left); err != nil {
		return fmt.Errorf("left wheel: %w", err)
	}
	if out.KickerChanged && c.kicker != nil {
		if err := c.kicker.ForwardBackwardM1(out.Kicker); err != nil {
			return fmt.Errorf("kicker: %w", err)
		}
	}
	return nil
}

// Kill stops every motor. It tries all of them and reports every failure.
func (c *Controller) Kill() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mixer.Reset()

	var errs []error
	stop := func(name string, fn func(uint8) error) {
		if err := fn(0); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	stop("wheels M1", c.wheels.ForwardM1)
	stop("wheels M2", c.wheels.ForwardM2)
	if c.kicker != nil {
		stop("kicker M1", c.kicker.ForwardM1)
		stop("kicker M2", c.kicker.ForwardM2)
	}

	if len(errs) > 0 {
		glog.Warningf("teleop: motor kill incomplete: %v", errors.Join(errs...))
	}
	return errors.Join(errs...)
}
