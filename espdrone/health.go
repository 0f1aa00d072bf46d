package espdrone

import (
	"sync"
	"time"
)

const (
	heartbeatPeriod  = 1 * time.Second
	heartbeatTimeout = 1 * time.Second
)

// healthMonitor owns the link-liveness state. It pings at 1Hz and declares
// the connection lost when echoes stop arriving. Transitions are reported
// edge-triggered, exactly once each, through onChange.
type healthMonitor struct {
	link     Link
	onChange func(up bool)

	mu        sync.Mutex
	running   bool
	connected bool
	everAcked bool
	lastAck   time.Time
	stop      chan struct{}

	waitGroup sync.WaitGroup
}

func newHealthMonitor(link Link, onChange func(bool)) *healthMonitor {
	return &healthMonitor{link: link, onChange: onChange}
}

func (h *healthMonitor) start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.stop = make(chan struct{})
	stop := h.stop
	h.mu.Unlock()

	h.waitGroup.Add(1)
	go h.heartbeatThread(stop)
}

func (h *healthMonitor) heartbeatThread(stop chan struct{}) {
	defer h.waitGroup.Done()

	// ping immediately so the first echo isn't a second away
	h.link.Send(heartbeatPing)

	ticker := time.NewTicker(heartbeatPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		h.link.Send(heartbeatPing)

		h.mu.Lock()
		lost := h.connected && time.Since(h.lastAck) > heartbeatTimeout
		if lost {
			h.connected = false
		}
		h.mu.Unlock()

		if lost {
			h.onChange(false)
		}
	}
}

// noteAck records an inbound heartbeat echo; the first one flips the
// connection up.
func (h *healthMonitor) noteAck() {
	h.mu.Lock()
	h.everAcked = true
	h.lastAck = time.Now()
	up := h.running && !h.connected
	if up {
		h.connected = true
	}
	h.mu.Unlock()

	if up {
		h.onChange(true)
	}
}

func (h *healthMonitor) isConnected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected
}

// shutdown halts pinging. If the link was considered up, the down edge is
// still reported so callers observe a clean transition.
func (h *healthMonitor) shutdown() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.stop)
	wasConnected := h.connected
	h.connected = false
	h.everAcked = false
	h.mu.Unlock()

	h.waitGroup.Wait()
	if wasConnected {
		h.onChange(false)
	}
}
