package espdrone

import (
	"math"
	"time"
)

// ControlInput is the continuously-updated operator input: roll/pitch/yaw
// normalised to [-1,1], thrust to [0,1]. The UI owns it; the sequencer only
// reads the latest value.
type ControlInput struct {
	Roll, Pitch, Yaw float32
	ThrustNorm       float32
	YawEnabled       bool
}

// Trim is an additive roll/pitch correction applied before clamping.
type Trim struct {
	Roll, Pitch float32
}

const (
	maxRollPitchDeg  = 30.0
	maxYawRateDegSec = 50.0

	thrustProtocolMin = 1000.0
	thrustProtocolMax = 60000.0

	hoverVelocityMax = 1.0 // m/s at full stick deflection

	trimLimit = 0.5

	heightTargetMin = 0.20
	heightTargetMax = 1.50
)

func clampUnit(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func clampTrim(v float32) float32 {
	if v > trimLimit {
		return trimLimit
	}
	if v < -trimLimit {
		return -trimLimit
	}
	return v
}

func clampHeightTarget(m float32) float32 {
	if m < heightTargetMin {
		return heightTargetMin
	}
	if m > heightTargetMax {
		return heightTargetMax
	}
	return m
}

// rollPitchAngles maps stick plus trim onto commanded angles in degrees.
func rollPitchAngles(in ControlInput, trim Trim) (roll, pitch float32) {
	roll = clampUnit(in.Roll+trim.Roll) * maxRollPitchDeg
	pitch = clampUnit(in.Pitch+trim.Pitch) * maxRollPitchDeg
	return roll, pitch
}

func yawRate(in ControlInput) float32 {
	if !in.YawEnabled {
		return 0
	}
	return in.Yaw * maxYawRateDegSec
}

// protocolThrust maps normalised thrust onto the firmware's 16-bit range.
// Zero input commands zero, not the 1000-count idle floor.
func protocolThrust(norm float32) uint16 {
	if norm <= 0 {
		return 0
	}
	if norm > 1 {
		norm = 1
	}
	return uint16(math.Round(thrustProtocolMin + float64(norm)*(thrustProtocolMax-thrustProtocolMin)))
}

const (
	decayPeriod   = 50 * time.Millisecond
	decayDuration = 750 * time.Millisecond
)

// throttleDecay ramps the last commanded thrust linearly to zero after the
// stick is released, instead of cutting the motors dead.
type throttleDecay struct {
	active bool
	from   uint16
	start  time.Time
	stop   chan struct{}
}

func (d *throttleDecay) valueAt(t time.Time) uint16 {
	elapsed := t.Sub(d.start)
	if elapsed >= decayDuration {
		return 0
	}
	remaining := 1 - float64(elapsed)/float64(decayDuration)
	return uint16(math.Round(float64(d.from) * remaining))
}
