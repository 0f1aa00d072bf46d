package espdrone

import "github.com/fethicandan/esplink/crtp"

const commanderFrameLen = 16 // header + 3*f32 + u16 + checksum

// hoverChecksumSpan is the byte range the firmware sums for the hover
// setpoint frame: exactly the first 18 bytes (header, command, 4 floats).
// The commander frame instead sums incrementally over header+payload.
// Verify against the firmware before unifying the two.
const hoverChecksumSpan = 18

const hoverSetpointCommand = 0x05

// Frames with no variable payload are fixed literals defined by the
// firmware.
var (
	heartbeatPing = []byte{0xFD, 0x00, 0xFD}

	// log-control channel commands: 0x00 create, 0x03 start, 0x04 stop.
	// Block 1 carries the battery voltage float; start period is in 10ms
	// units.
	voltageLogConfig = []byte{0x51, 0x00, 0x01, 0x07, 0x21}
	voltageLogStart  = []byte{0x51, 0x03, 0x01, 0x0A}
	voltageLogStop   = []byte{0x51, 0x04, 0x01}

	heightSensorProbe = []byte{0x2D, 0x02, 0x00}

	// two-stage high-level commander enable; the second frame follows the
	// first after 200ms
	hlCommanderArm    = []byte{0x2E, 0x02, 0x00, 0x01, 0x31}
	hlCommanderCommit = []byte{0x2F, 0x02, 0x01}
)

// ---- CONTROL REQUEST: COMMANDER SETPOINT ----
type CommanderRequest struct {
	Roll, Pitch, Yaw float32 // degrees, degrees, degrees/s
	Thrust           uint16
}

func (p *CommanderRequest) Port() crtp.Port {
	return crtp.PortCommander
}

func (p *CommanderRequest) Channel() crtp.Channel {
	return 0
}

func (p *CommanderRequest) Bytes() []byte {
	packet := make([]byte, 14)
	copy(packet[0:4], float32ToBytes(p.Roll))
	copy(packet[4:8], float32ToBytes(-p.Pitch)) // pitch is sign-inverted on the wire
	copy(packet[8:12], float32ToBytes(p.Yaw))
	copy(packet[12:14], uint16ToBytes(p.Thrust))
	return packet
}

// Datagram renders the full UDP frame: header, payload, then the trailing
// checksum accumulated over everything before it.
func (p *CommanderRequest) Datagram() []byte {
	dat := requestFrame(p)
	return append(dat, crtp.Checksum(dat))
}

// ParseCommanderDatagram decodes a full commander frame back into its
// fields, undoing the pitch sign inversion. Used for validation and by
// simulators.
func ParseCommanderDatagram(dat []byte) (*CommanderRequest, error) {
	if len(dat) != commanderFrameLen {
		return nil, crtp.ErrorPacketTooShort
	}
	if dat[0] != crtp.HeaderBytes(crtp.PortCommander, 0) {
		return nil, crtp.ErrorPacketIncorrectType
	}
	if dat[commanderFrameLen-1] != crtp.Checksum(dat[:commanderFrameLen-1]) {
		return nil, crtp.ErrorPacketBadChecksum
	}
	return &CommanderRequest{
		Roll:   bytesToFloat32(dat[1:5]),
		Pitch:  -bytesToFloat32(dat[5:9]),
		Yaw:    bytesToFloat32(dat[9:13]),
		Thrust: bytesToUint16(dat[13:15]),
	}, nil
}

// ---- CONTROL REQUEST: HOVER SETPOINT ----
type HoverSetpointRequest struct {
	VX, VY  float32 // body-frame m/s
	YawRate float32 // degrees/s
	Height  float32 // metres
}

func (p *HoverSetpointRequest) Port() crtp.Port {
	return crtp.PortGeneric
}

func (p *HoverSetpointRequest) Channel() crtp.Channel {
	return 0x0C
}

func (p *HoverSetpointRequest) Bytes() []byte {
	packet := make([]byte, 17)
	packet[0] = hoverSetpointCommand
	copy(packet[1:5], float32ToBytes(p.VX))
	copy(packet[5:9], float32ToBytes(p.VY))
	copy(packet[9:13], float32ToBytes(p.YawRate))
	copy(packet[13:17], float32ToBytes(p.Height))
	return packet
}

func (p *HoverSetpointRequest) Datagram() []byte {
	dat := requestFrame(p)
	return append(dat, crtp.Checksum(dat[:hoverChecksumSpan]))
}

// requestFrame renders a request's header and payload, leaving room for the
// per-type trailing checksum.
func requestFrame(p crtp.RequestPacketPtr) []byte {
	payload := p.Bytes()
	dat := make([]byte, 0, len(payload)+2)
	dat = append(dat, crtp.HeaderBytes(p.Port(), p.Channel()))
	return append(dat, payload...)
}

// ---- LINK RESPONSE: HEARTBEAT ECHO ----
type LinkEchoResponse struct{}

func (p *LinkEchoResponse) Port() crtp.Port {
	return crtp.PortLink
}

func (p *LinkEchoResponse) Channel() crtp.Channel {
	return crtp.ChannelLinkEcho
}

func (p *LinkEchoResponse) LoadFromBytes(b []byte) error {
	if len(b) < 1 {
		return crtp.ErrorPacketTooShort
	}
	header := crtp.Header(b[0])
	if header.Port() != p.Port() || header.Channel() != p.Channel() {
		return crtp.ErrorPacketIncorrectType
	}
	return nil
}

// ---- LOG RESPONSE: BATTERY VOLTAGE ----
type VoltageResponse struct {
	Voltage float32
}

func (p *VoltageResponse) Port() crtp.Port {
	return crtp.PortLog
}

func (p *VoltageResponse) Channel() crtp.Channel {
	return 2
}

func (p *VoltageResponse) LoadFromBytes(b []byte) error {
	if len(b) < 9 {
		return crtp.ErrorPacketTooShort
	}
	// log data for block 1: header, block id, 3-byte timestamp, then the
	// float payload
	if b[0] != crtp.HeaderBytes(p.Port(), p.Channel()) || b[1] != 0x01 {
		return crtp.ErrorPacketIncorrectType
	}
	p.Voltage = bytesToFloat32(b[5:9])
	return nil
}

// ---- PARAM RESPONSE: HEIGHT SENSOR PROBE ----
type HeightProbeResponse struct {
	Present bool
}

func (p *HeightProbeResponse) Port() crtp.Port {
	return crtp.PortParam
}

func (p *HeightProbeResponse) Channel() crtp.Channel {
	return 0x0D
}

func (p *HeightProbeResponse) LoadFromBytes(b []byte) error {
	if len(b) < 5 {
		return crtp.ErrorPacketTooShort
	}
	if b[0] != 0x2D || b[1] != 0x02 {
		return crtp.ErrorPacketIncorrectType
	}
	p.Present = b[4] == 0x01
	return nil
}
