package espdrone

import (
	"sync"
	"time"

	"github.com/fethicandan/esplink/crtp"
)

const (
	detectionTimeout    = 5 * time.Second
	detectionProbeSpace = 500 * time.Millisecond
	detectionProbeCount = 3
)

// telemetryRouter demultiplexes inbound datagrams and owns the vehicle
// telemetry snapshot. Exactly one datum is updated per datagram; frames
// that don't classify are dropped without side effects.
type telemetryRouter struct {
	link   Link
	health *healthMonitor
	events *Events

	mu              sync.Mutex
	voltage         float32
	hasVoltage      bool
	heightSensor    bool
	hasHeightSensor bool
	detection       chan bool // pending one-shot detection, nil when idle
	closed          bool
}

func newTelemetryRouter(link Link, health *healthMonitor, events *Events) *telemetryRouter {
	return &telemetryRouter{link: link, health: health, events: events}
}

// route classifies one inbound datagram against each known response kind.
// Malformed or unknown frames are not errors; they are silently ignored.
func (r *telemetryRouter) route(dat []byte) {
	if len(dat) == 0 {
		return
	}

	candidates := []crtp.ResponsePacketPtr{
		&LinkEchoResponse{},
		&VoltageResponse{},
		&HeightProbeResponse{},
	}
	for _, candidate := range candidates {
		if candidate.LoadFromBytes(dat) != nil {
			continue
		}
		switch resp := candidate.(type) {
		case *LinkEchoResponse:
			r.health.noteAck()
		case *VoltageResponse:
			r.mu.Lock()
			r.voltage = resp.Voltage
			r.hasVoltage = true
			r.mu.Unlock()
			r.events.voltage(resp.Voltage)
		case *HeightProbeResponse:
			r.mu.Lock()
			r.heightSensor = resp.Present
			r.hasHeightSensor = true
			pending := r.detection
			r.detection = nil
			r.mu.Unlock()
			if pending != nil {
				pending <- resp.Present
			}
		}
		return
	}
}

// detectHeightSensor performs the bounded one-shot probe: up to
// detectionProbeCount probes at detectionProbeSpace intervals, giving up
// after detectionTimeout with "not present". A new call supersedes any
// outstanding detection, resolving it to false.
func (r *telemetryRouter) detectHeightSensor() bool {
	result := make(chan bool, 1)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	if r.detection != nil {
		r.detection <- false // superseded
	}
	r.detection = result
	r.mu.Unlock()

	deadline := time.NewTimer(detectionTimeout)
	defer deadline.Stop()
	probeTick := time.NewTicker(detectionProbeSpace)
	defer probeTick.Stop()

	r.link.Send(heightSensorProbe)
	probes := 1

	for {
		select {
		case present := <-result:
			r.clearDetection(result)
			r.events.heightSensorDetected(present)
			return present
		case <-probeTick.C:
			if probes < detectionProbeCount {
				r.link.Send(heightSensorProbe)
				probes++
			}
		case <-deadline.C:
			r.clearDetection(result)
			r.events.heightSensorDetected(false)
			return false
		}
	}
}

func (r *telemetryRouter) clearDetection(result chan bool) {
	r.mu.Lock()
	if r.detection == result {
		r.detection = nil
	}
	r.mu.Unlock()
}

// startVoltageLog asks the firmware to create and start the battery log
// block. Sent on every connection-up edge; the firmware treats a duplicate
// create as a no-op.
func (r *telemetryRouter) startVoltageLog() {
	r.link.Send(voltageLogConfig)
	r.link.Send(voltageLogStart)
}

func (r *telemetryRouter) stopVoltageLog() {
	r.link.Send(voltageLogStop)
}

// closeRouter cancels any in-flight detection so no completion dangles
// after shutdown.
func (r *telemetryRouter) closeRouter() {
	r.mu.Lock()
	r.closed = true
	if r.detection != nil {
		r.detection <- false
		r.detection = nil
	}
	r.mu.Unlock()
}

func (r *telemetryRouter) reopen() {
	r.mu.Lock()
	r.closed = false
	r.mu.Unlock()
}

func (r *telemetryRouter) batteryVoltage() (float32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.voltage, r.hasVoltage
}

func (r *telemetryRouter) heightSensorPresent() (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heightSensor, r.hasHeightSensor
}
