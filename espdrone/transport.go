package espdrone

import (
	"log"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/Workiva/go-datastructures/queue"
)

const (
	DefaultDroneAddr = "192.168.43.42"
	DefaultDronePort = 2390
	DefaultLocalPort = 2399
)

// Link is the transport a Drone talks through. Sends are best-effort and
// must never block the control loop; received datagrams are delivered one
// per handler invocation.
type Link interface {
	Open() error
	Send(packet []byte)
	SendPriority(packet []byte)
	SetReceiveHandler(handler func([]byte))
	Close()
}

// UDPLink owns the UDP endpoint bound to the local command port and talking
// to the vehicle's fixed address. Outbound datagrams pass through a
// standard and a priority queue; the worker drains priority first so the
// emergency-stop burst cannot sit behind queued command frames.
type UDPLink struct {
	droneAddr string
	dronePort int
	localPort int

	mu      sync.Mutex
	conn    *net.UDPConn
	opened  bool
	stop    chan struct{}
	handler func([]byte)

	standardQueue *queue.Queue
	priorityQueue *queue.Queue

	waitGroup sync.WaitGroup
}

func NewUDPLink(droneAddr string, dronePort, localPort int) *UDPLink {
	return &UDPLink{
		droneAddr: droneAddr,
		dronePort: dronePort,
		localPort: localPort,
	}
}

func NewDefaultUDPLink() *UDPLink {
	return NewUDPLink(DefaultDroneAddr, DefaultDronePort, DefaultLocalPort)
}

func (l *UDPLink) SetReceiveHandler(handler func([]byte)) {
	l.mu.Lock()
	l.handler = handler
	l.mu.Unlock()
}

func (l *UDPLink) Open() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.opened {
		return ErrorLinkAlreadyOpen
	}

	droneAddr, err := net.ResolveUDPAddr("udp", l.droneAddr+":"+strconv.Itoa(l.dronePort))
	if err != nil {
		log.Printf("esplink: resolving %s: %v", l.droneAddr, err)
		return classifyOpenError(err)
	}
	localAddr, err := net.ResolveUDPAddr("udp", ":"+strconv.Itoa(l.localPort))
	if err != nil {
		return classifyOpenError(err)
	}

	conn, err := net.DialUDP("udp", localAddr, droneAddr)
	if err != nil {
		log.Printf("esplink: opening command link: %v", err)
		return classifyOpenError(err)
	}

	l.conn = conn
	l.stop = make(chan struct{})
	l.standardQueue = queue.New(16)
	l.priorityQueue = queue.New(16)
	l.opened = true

	l.waitGroup.Add(2)
	go l.workerThread()
	go l.readerThread()

	return nil
}

// Send schedules a datagram on the standard queue. Failures are logged and
// swallowed: one lost frame at 50Hz is operationally insignificant.
func (l *UDPLink) Send(packet []byte) {
	l.enqueue(l.queueFor(false), packet)
}

// SendPriority schedules a datagram ahead of all standard traffic.
func (l *UDPLink) SendPriority(packet []byte) {
	l.enqueue(l.queueFor(true), packet)
}

func (l *UDPLink) queueFor(priority bool) *queue.Queue {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.opened {
		return nil
	}
	if priority {
		return l.priorityQueue
	}
	return l.standardQueue
}

func (l *UDPLink) enqueue(q *queue.Queue, packet []byte) {
	if q == nil {
		return
	}
	if err := q.Put(packet); err != nil {
		log.Printf("esplink: dropping outbound packet: %v", err)
	}
}

func (l *UDPLink) workerThread() {
	defer l.waitGroup.Done()

	for {
		select {
		case <-l.stop:
			return
		default:
		}

		if items, err := l.priorityQueue.Poll(1, time.Millisecond); err == nil {
			l.write(items[0].([]byte))
			continue
		} else if err == queue.ErrDisposed {
			return
		}

		if items, err := l.standardQueue.Poll(1, 4*time.Millisecond); err == nil {
			l.write(items[0].([]byte))
		} else if err == queue.ErrDisposed {
			return
		}
	}
}

func (l *UDPLink) write(packet []byte) {
	if _, err := l.conn.Write(packet); err != nil {
		log.Printf("esplink: send failed: %v", err)
	}
}

func (l *UDPLink) readerThread() {
	defer l.waitGroup.Done()

	buff := make([]byte, 1024)
	for {
		n, err := l.conn.Read(buff)

		select {
		case <-l.stop:
			return
		default:
		}

		if err != nil {
			// transient on a connected UDP socket (e.g. ICMP port
			// unreachable); keep listening
			log.Printf("esplink: read error: %v", err)
			continue
		}
		if n == 0 {
			continue
		}

		dat := make([]byte, n)
		copy(dat, buff[:n])

		l.mu.Lock()
		handler := l.handler
		l.mu.Unlock()
		if handler != nil {
			handler(dat)
		}
	}
}

// Close releases the endpoint and stops both worker goroutines. Calling it
// on an already-closed link is a no-op.
func (l *UDPLink) Close() {
	l.mu.Lock()
	if !l.opened {
		l.mu.Unlock()
		return
	}
	l.opened = false
	close(l.stop)
	l.standardQueue.Dispose()
	l.priorityQueue.Dispose()
	conn := l.conn
	l.mu.Unlock()

	conn.Close()
	l.waitGroup.Wait()
}
