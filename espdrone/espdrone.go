package espdrone

import (
	"fmt"
	"log"
	"sync"
	"time"
)

type FlightState uint8

const (
	StateDisconnected FlightState = iota
	StateConnecting
	StateArming
	StateManualFlight
	StateHeightHold
	StateLanding
	StateEmergencyStopped
)

var flightStateString = map[FlightState]string{
	StateDisconnected:     "disconnected",
	StateConnecting:       "connecting",
	StateArming:           "arming",
	StateManualFlight:     "manual",
	StateHeightHold:       "heighthold",
	StateLanding:          "landing",
	StateEmergencyStopped: "emergencystopped",
}

func (s FlightState) String() string {
	return flightStateString[s]
}

// Drone is the single owner of the flight state machine and of the
// commanded roll/pitch/yaw/thrust. All mutable state lives behind one
// coarse mutex so no two frames can interleave out of order.
type Drone struct {
	link   Link
	events Events

	health    *healthMonitor
	telemetry *telemetryRouter

	mu       sync.Mutex
	state    FlightState
	linkOpen bool
	armed    bool
	armCount int

	input ControlInput
	trim  Trim

	heightTarget float32

	lastThrust  uint16
	decay       throttleDecay
	decayThrust uint16

	loopStop    chan struct{}
	landingStop chan struct{}
	landingHold *time.Timer
	hlCommit    *time.Timer
	rearm       *time.Timer
}

// New wires a Drone onto a link. The link is not opened until Connect.
func New(link Link, events Events) *Drone {
	d := &Drone{
		link:         link,
		events:       events,
		state:        StateDisconnected,
		heightTarget: heightTargetMin,
	}
	d.health = newHealthMonitor(link, d.handleConnectionChange)
	d.telemetry = newTelemetryRouter(link, d.health, &d.events)
	link.SetReceiveHandler(d.telemetry.route)
	return d
}

// Connect opens the transport, starts the heartbeat monitor and the 50Hz
// command loop, and enters the arming sequence. Open failures leave the
// drone Disconnected and are returned classified for user messaging.
func (d *Drone) Connect() error {
	d.mu.Lock()
	if d.state != StateDisconnected {
		d.mu.Unlock()
		return ErrorAlreadyConnected
	}
	d.state = StateConnecting
	needOpen := !d.linkOpen
	d.mu.Unlock()

	if needOpen {
		if err := d.link.Open(); err != nil {
			d.mu.Lock()
			if d.state == StateConnecting {
				d.state = StateDisconnected
			}
			d.mu.Unlock()
			d.logf("connect failed: %v", err)
			return err
		}
	}

	// an emergency stop can land while the open is in flight; honor it and
	// leave the arming entry to the auto re-arm path
	d.mu.Lock()
	d.linkOpen = true
	aborted := d.state != StateConnecting
	if !aborted {
		d.armed = false
		d.armCount = 0
		d.state = StateArming
		d.startCommandLoopLocked()
	}
	d.mu.Unlock()

	d.telemetry.reopen()
	d.health.start()
	if aborted {
		d.logf("link open, connect aborted by emergency stop")
		return nil
	}
	d.logf("link open, arming")
	return nil
}

// Disconnect tears the whole stack down: timers, detection, heartbeat,
// endpoint. Safe to call repeatedly.
func (d *Drone) Disconnect() {
	d.mu.Lock()
	if d.state == StateDisconnected && !d.linkOpen {
		d.mu.Unlock()
		return
	}
	d.zeroThrustLocked()
	d.armed = false
	d.cancelLandingLocked()
	d.cancelHandshakeLocked()
	d.cancelRearmLocked()
	d.stopCommandLoopLocked()
	d.state = StateDisconnected
	wasOpen := d.linkOpen
	d.linkOpen = false
	d.mu.Unlock()

	if wasOpen {
		d.telemetry.stopVoltageLog()
	}
	d.telemetry.closeRouter()
	d.health.shutdown() // reports the down edge if we were connected
	d.link.Close()
	d.logf("disconnected")
}

func (d *Drone) State() FlightState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Drone) IsArmed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

func (d *Drone) IsConnected() bool {
	return d.health.isConnected()
}

func (d *Drone) HeightTarget() float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.heightTarget
}

// BatteryVoltage returns the last reported pack voltage, if any has
// arrived yet.
func (d *Drone) BatteryVoltage() (float32, bool) {
	return d.telemetry.batteryVoltage()
}

// HeightSensorPresent returns the last probe result, if any.
func (d *Drone) HeightSensorPresent() (bool, bool) {
	return d.telemetry.heightSensorPresent()
}

// DetectHeightSensor probes for the height-sensor deck. It blocks the
// caller for at most 5 seconds and resolves to false rather than hanging
// when the vehicle never answers.
func (d *Drone) DetectHeightSensor() bool {
	return d.telemetry.detectHeightSensor()
}

func (d *Drone) logf(format string, a ...interface{}) {
	line := fmt.Sprintf(format, a...)
	log.Printf("esplink: %s", line)
	d.events.logLine(line)
}
