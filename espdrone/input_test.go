package espdrone

import (
	"testing"
	"time"
)

func TestProtocolThrust(t *testing.T) {
	cases := []struct {
		norm float32
		want uint16
	}{
		{0, 0},
		{-0.3, 0},
		{0.5, 30500},
		{1, 60000},
		{1.7, 60000},
	}
	for _, c := range cases {
		if got := protocolThrust(c.norm); got != c.want {
			t.Errorf("protocolThrust(%v) = %d, want %d", c.norm, got, c.want)
		}
	}
}

func TestRollPitchAngles(t *testing.T) {
	roll, pitch := rollPitchAngles(ControlInput{Roll: 0.5, Pitch: -0.5}, Trim{})
	if roll != 15 || pitch != -15 {
		t.Errorf("angles = %v, %v, want 15, -15", roll, pitch)
	}

	// trim is added before the clamp, so full stick plus trim saturates
	roll, pitch = rollPitchAngles(ControlInput{Roll: 0.8, Pitch: -0.8}, Trim{Roll: 0.5, Pitch: -0.5})
	if roll != maxRollPitchDeg || pitch != -maxRollPitchDeg {
		t.Errorf("saturated angles = %v, %v, want ±%v", roll, pitch, float32(maxRollPitchDeg))
	}
}

func TestYawRate(t *testing.T) {
	if got := yawRate(ControlInput{Yaw: 0.5}); got != 0 {
		t.Errorf("yaw with rotation disabled = %v, want 0", got)
	}
	if got := yawRate(ControlInput{Yaw: 0.5, YawEnabled: true}); got != 25 {
		t.Errorf("yaw = %v, want 25", got)
	}
	if got := yawRate(ControlInput{Yaw: -1, YawEnabled: true}); got != -maxYawRateDegSec {
		t.Errorf("yaw = %v, want %v", got, float32(-maxYawRateDegSec))
	}
}

func TestClamps(t *testing.T) {
	if got := clampTrim(0.9); got != trimLimit {
		t.Errorf("clampTrim(0.9) = %v", got)
	}
	if got := clampTrim(-0.9); got != -trimLimit {
		t.Errorf("clampTrim(-0.9) = %v", got)
	}
	if got := clampHeightTarget(0.05); got != heightTargetMin {
		t.Errorf("clampHeightTarget(0.05) = %v", got)
	}
	if got := clampHeightTarget(9); got != heightTargetMax {
		t.Errorf("clampHeightTarget(9) = %v", got)
	}
	if got := clampHeightTarget(0.8); got != 0.8 {
		t.Errorf("clampHeightTarget(0.8) = %v", got)
	}
}

func TestThrottleDecayValue(t *testing.T) {
	start := time.Now()
	d := throttleDecay{from: 30000, start: start}

	if got := d.valueAt(start); got != 30000 {
		t.Errorf("value at release = %d, want 30000", got)
	}
	if got := d.valueAt(start.Add(decayDuration / 2)); got != 15000 {
		t.Errorf("value at midpoint = %d, want 15000", got)
	}
	if got := d.valueAt(start.Add(decayDuration)); got != 0 {
		t.Errorf("value at end = %d, want 0", got)
	}
	if got := d.valueAt(start.Add(2 * decayDuration)); got != 0 {
		t.Errorf("value past end = %d, want 0", got)
	}
}
