package espdrone

import "time"

const (
	commandPeriod    = 20 * time.Millisecond
	armingFrameCount = 100

	landingPeriod = 100 * time.Millisecond
	landingStep   = 0.03
	landingHold   = 1 * time.Second

	hlHandshakeDelay = 200 * time.Millisecond

	emergencyBurstCount = 5
	emergencyRearmDelay = 500 * time.Millisecond
)

// SetControlInput publishes the latest operator input. A thrust release in
// manual flight starts the throttle decay ramp; any fresh non-zero thrust
// cancels it and resumes direct control.
func (d *Drone) SetControlInput(in ControlInput) {
	d.mu.Lock()
	d.input = in
	if in.ThrustNorm > 0 {
		d.cancelDecayLocked()
	} else if d.state == StateManualFlight && d.armed && d.lastThrust > 0 && !d.decay.active {
		d.startDecayLocked(d.lastThrust)
	}
	d.mu.Unlock()
}

func (d *Drone) SetTrim(t Trim) {
	d.mu.Lock()
	d.trim = Trim{Roll: clampTrim(t.Roll), Pitch: clampTrim(t.Pitch)}
	d.mu.Unlock()
}

// Arm re-runs the arming sequence. Connecting arms automatically; this is
// for recovering manually after an emergency stop or a landing.
func (d *Drone) Arm() error {
	d.mu.Lock()
	if d.state != StateManualFlight && d.state != StateEmergencyStopped {
		d.mu.Unlock()
		return ErrorInvalidState
	}
	if !d.health.isConnected() {
		d.mu.Unlock()
		return ErrorNotConnected
	}
	d.cancelRearmLocked()
	d.cancelDecayLocked()
	d.armed = false
	d.armCount = 0
	d.state = StateArming
	d.startCommandLoopLocked()
	d.mu.Unlock()

	d.logf("arming")
	return nil
}

// EnableHeightHold hands altitude to the vehicle's onboard controller at
// the given target and switches the command loop to hover setpoints.
func (d *Drone) EnableHeightHold(targetMeters float32) error {
	d.mu.Lock()
	if d.state != StateManualFlight || !d.armed {
		d.mu.Unlock()
		return ErrorInvalidState
	}
	d.cancelDecayLocked()
	d.heightTarget = clampHeightTarget(targetMeters)
	d.state = StateHeightHold

	// two-stage firmware handshake; the commit frame follows 200ms later
	d.link.Send(hlCommanderArm)
	d.cancelHandshakeLocked()
	d.hlCommit = time.AfterFunc(hlHandshakeDelay, func() {
		d.link.Send(hlCommanderCommit)
	})
	target := d.heightTarget
	d.mu.Unlock()

	d.logf("height hold enabled at %.2fm", target)
	return nil
}

// SetHeightTarget moves the held altitude. Ignored outside height-hold;
// during landing the ramp owns the target.
func (d *Drone) SetHeightTarget(meters float32) {
	d.mu.Lock()
	if d.state == StateHeightHold {
		d.heightTarget = clampHeightTarget(meters)
	}
	d.mu.Unlock()
}

// StartLanding begins the descent ramp: 0.03m per 100ms tick down to the
// floor, then a 1s hold before height-hold deactivates.
func (d *Drone) StartLanding() error {
	d.mu.Lock()
	if d.state != StateHeightHold {
		d.mu.Unlock()
		return ErrorInvalidState
	}
	d.state = StateLanding
	stop := make(chan struct{})
	d.landingStop = stop
	go d.landingLoop(stop)
	d.mu.Unlock()

	d.logf("landing")
	return nil
}

func (d *Drone) landingLoop(stop chan struct{}) {
	ticker := time.NewTicker(landingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		d.mu.Lock()
		if d.state != StateLanding || d.landingStop != stop {
			d.mu.Unlock()
			return
		}
		d.heightTarget -= landingStep
		if d.heightTarget <= heightTargetMin {
			d.heightTarget = heightTargetMin
			d.landingStop = nil
			// setpoints keep streaming at the floor during the hold
			d.landingHold = time.AfterFunc(landingHold, d.finishLanding)
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()
	}
}

func (d *Drone) finishLanding() {
	d.mu.Lock()
	if d.state != StateLanding {
		d.mu.Unlock()
		return
	}
	d.landingHold = nil
	d.state = StateManualFlight
	d.mu.Unlock()

	d.logf("landed, height hold deactivated")
}

// EmergencyStop kills thrust from any state but Disconnected: all timers
// cancelled, five zero-thrust frames burst down the priority path, armed
// cleared. Mid-connect it aborts the pending arming entry. 500ms later the
// drone re-enters Arming by itself if the link is still up.
func (d *Drone) EmergencyStop() {
	d.mu.Lock()
	if d.state == StateDisconnected {
		d.mu.Unlock()
		return
	}
	d.stopCommandLoopLocked()
	d.cancelLandingLocked()
	d.cancelHandshakeLocked()
	d.cancelRearmLocked()
	d.zeroThrustLocked()
	d.input = ControlInput{}
	d.armed = false
	d.state = StateEmergencyStopped

	frame := (&CommanderRequest{}).Datagram()
	for i := 0; i < emergencyBurstCount; i++ {
		d.link.SendPriority(frame)
	}

	d.rearm = time.AfterFunc(emergencyRearmDelay, d.autoRearm)
	d.mu.Unlock()

	d.logf("emergency stop")
}

func (d *Drone) autoRearm() {
	connected := d.health.isConnected()

	d.mu.Lock()
	if d.state != StateEmergencyStopped {
		d.mu.Unlock()
		return
	}
	d.rearm = nil
	if !connected {
		d.mu.Unlock()
		d.logf("emergency stop: link down, staying stopped")
		return
	}
	d.armCount = 0
	d.state = StateArming
	d.startCommandLoopLocked()
	d.mu.Unlock()

	d.logf("emergency stop: re-arming")
}

// handleConnectionChange is the health monitor's edge callback.
func (d *Drone) handleConnectionChange(up bool) {
	if up {
		d.telemetry.startVoltageLog()
		d.logf("connection up")
	} else {
		d.handleConnectionLost()
		d.logf("connection lost")
	}
	d.events.connectionChange(up)
}

// handleConnectionLost forces thrust to zero before any other mutation,
// then drops the state machine back to Disconnected. The endpoint and the
// heartbeat monitor stay up so a later Connect can resume without
// re-binding.
func (d *Drone) handleConnectionLost() {
	d.mu.Lock()
	d.zeroThrustLocked()
	d.armed = false
	d.cancelLandingLocked()
	d.cancelHandshakeLocked()
	d.cancelRearmLocked()
	d.stopCommandLoopLocked()
	d.state = StateDisconnected
	d.mu.Unlock()
}

func (d *Drone) startCommandLoopLocked() {
	if d.loopStop != nil {
		return
	}
	stop := make(chan struct{})
	d.loopStop = stop
	go d.commandLoop(stop)
}

func (d *Drone) stopCommandLoopLocked() {
	if d.loopStop != nil {
		close(d.loopStop)
		d.loopStop = nil
	}
}

func (d *Drone) commandLoop(stop chan struct{}) {
	ticker := time.NewTicker(commandPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		d.commandTick()
	}
}

// commandTick builds and sends exactly one frame for the current state.
// Each tick is isolated: a failure here never halts subsequent ticks.
func (d *Drone) commandTick() {
	var completedArming bool

	d.mu.Lock()
	switch d.state {
	case StateArming:
		// arming ignores operator input entirely
		d.link.Send((&CommanderRequest{}).Datagram())
		d.armCount++
		if d.armCount >= armingFrameCount {
			d.armed = true
			d.state = StateManualFlight
			completedArming = true
		}

	case StateManualFlight:
		var thrust uint16
		if d.decay.active {
			thrust = d.decayThrust
		} else if d.armed && d.input.ThrustNorm > 0 {
			thrust = protocolThrust(d.input.ThrustNorm)
			d.lastThrust = thrust
		} else {
			d.lastThrust = 0
		}
		roll, pitch := rollPitchAngles(d.input, d.trim)
		req := &CommanderRequest{
			Roll:   roll,
			Pitch:  pitch,
			Yaw:    yawRate(d.input),
			Thrust: thrust,
		}
		d.link.Send(req.Datagram())

	case StateHeightHold, StateLanding:
		req := &HoverSetpointRequest{
			VX:      clampUnit(d.input.Pitch+d.trim.Pitch) * hoverVelocityMax,
			VY:      -clampUnit(d.input.Roll+d.trim.Roll) * hoverVelocityMax,
			YawRate: yawRate(d.input),
			Height:  d.heightTarget,
		}
		d.link.Send(req.Datagram())

	default:
		// Connecting, Disconnected, EmergencyStopped send nothing
	}
	d.mu.Unlock()

	if completedArming {
		d.logf("arming complete, manual flight enabled")
	}
}

func (d *Drone) startDecayLocked(from uint16) {
	stop := make(chan struct{})
	d.decay = throttleDecay{active: true, from: from, start: time.Now(), stop: stop}
	d.decayThrust = from
	go d.decayLoop(stop)
}

func (d *Drone) decayLoop(stop chan struct{}) {
	ticker := time.NewTicker(decayPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case t := <-ticker.C:
			d.mu.Lock()
			if !d.decay.active || d.decay.stop != stop {
				d.mu.Unlock()
				return
			}
			v := d.decay.valueAt(t)
			d.decayThrust = v
			if v == 0 {
				d.decay.active = false
				d.decay.stop = nil
				d.lastThrust = 0
				d.mu.Unlock()
				return
			}
			d.mu.Unlock()
		}
	}
}

func (d *Drone) cancelDecayLocked() {
	if d.decay.stop != nil {
		close(d.decay.stop)
		d.decay.stop = nil
	}
	d.decay.active = false
	d.decayThrust = 0
}

func (d *Drone) cancelLandingLocked() {
	if d.landingStop != nil {
		close(d.landingStop)
		d.landingStop = nil
	}
	if d.landingHold != nil {
		d.landingHold.Stop()
		d.landingHold = nil
	}
}

func (d *Drone) cancelHandshakeLocked() {
	if d.hlCommit != nil {
		d.hlCommit.Stop()
		d.hlCommit = nil
	}
}

func (d *Drone) cancelRearmLocked() {
	if d.rearm != nil {
		d.rearm.Stop()
		d.rearm = nil
	}
}

func (d *Drone) zeroThrustLocked() {
	d.cancelDecayLocked()
	d.lastThrust = 0
}
