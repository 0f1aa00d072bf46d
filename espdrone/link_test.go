package espdrone

import "sync"

// fakeLink records outbound frames and lets tests inject inbound datagrams.
type fakeLink struct {
	mu       sync.Mutex
	sent     [][]byte
	priority [][]byte
	handler  func([]byte)
	openErr  error
	opened   bool
}

func (f *fakeLink) Open() error {
	if f.openErr != nil {
		return f.openErr
	}
	f.mu.Lock()
	f.opened = true
	f.mu.Unlock()
	return nil
}

func (f *fakeLink) Send(packet []byte) {
	f.mu.Lock()
	f.sent = append(f.sent, packet)
	f.mu.Unlock()
}

func (f *fakeLink) SendPriority(packet []byte) {
	f.mu.Lock()
	f.priority = append(f.priority, packet)
	f.mu.Unlock()
}

func (f *fakeLink) SetReceiveHandler(handler func([]byte)) {
	f.mu.Lock()
	f.handler = handler
	f.mu.Unlock()
}

func (f *fakeLink) Close() {
	f.mu.Lock()
	f.opened = false
	f.mu.Unlock()
}

func (f *fakeLink) inject(dat []byte) {
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	if handler != nil {
		handler(dat)
	}
}

func (f *fakeLink) sentFrames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeLink) priorityFrames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.priority))
	copy(out, f.priority)
	return out
}

// commanderFrames filters and decodes the commander datagrams in order.
func commanderFrames(frames [][]byte) []*CommanderRequest {
	var out []*CommanderRequest
	for _, f := range frames {
		if req, err := ParseCommanderDatagram(f); err == nil {
			out = append(out, req)
		}
	}
	return out
}

func countFrames(frames [][]byte, want []byte) int {
	n := 0
	for _, f := range frames {
		if len(f) == len(want) {
			match := true
			for i := range f {
				if f[i] != want[i] {
					match = false
					break
				}
			}
			if match {
				n++
			}
		}
	}
	return n
}

// eventRecorder captures Events callbacks for assertions.
type eventRecorder struct {
	mu         sync.Mutex
	connection []bool
	voltages   []float32
	detections []bool
	lines      []string
}

func (r *eventRecorder) events() Events {
	return Events{
		OnConnectionChange: func(up bool) {
			r.mu.Lock()
			r.connection = append(r.connection, up)
			r.mu.Unlock()
		},
		OnVoltage: func(v float32) {
			r.mu.Lock()
			r.voltages = append(r.voltages, v)
			r.mu.Unlock()
		},
		OnHeightSensorDetected: func(p bool) {
			r.mu.Lock()
			r.detections = append(r.detections, p)
			r.mu.Unlock()
		},
		OnLogLine: func(line string) {
			r.mu.Lock()
			r.lines = append(r.lines, line)
			r.mu.Unlock()
		},
	}
}

func (r *eventRecorder) connectionEvents() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, len(r.connection))
	copy(out, r.connection)
	return out
}

func (r *eventRecorder) voltageEvents() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]float32, len(r.voltages))
	copy(out, r.voltages)
	return out
}

func (r *eventRecorder) detectionEvents() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, len(r.detections))
	copy(out, r.detections)
	return out
}
