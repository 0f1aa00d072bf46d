package espdrone

import (
	"bytes"
	"testing"

	"github.com/fethicandan/esplink/crtp"
)

func TestCommanderDatagramEncoding(t *testing.T) {
	req := &CommanderRequest{Roll: 1.0, Pitch: 1.0, Yaw: 0, Thrust: 30500}
	dat := req.Datagram()

	// header, roll 1.0, pitch sign-inverted to -1.0, yaw 0, thrust 30500 LE,
	// trailing checksum over everything before it
	want := []byte{
		0x30,
		0x00, 0x00, 0x80, 0x3F,
		0x00, 0x00, 0x80, 0xBF,
		0x00, 0x00, 0x00, 0x00,
		0x24, 0x77,
		0xC9,
	}
	if !bytes.Equal(dat, want) {
		t.Errorf("datagram = % x, want % x", dat, want)
	}
}

func TestCommanderChecksumCoversHeaderAndPayload(t *testing.T) {
	cases := []CommanderRequest{
		{},
		{Roll: -12.5, Pitch: 7.25, Yaw: -50, Thrust: 60000},
		{Roll: 30, Pitch: -30, Yaw: 50, Thrust: 1000},
	}
	for _, req := range cases {
		dat := req.Datagram()
		if len(dat) != commanderFrameLen {
			t.Fatalf("frame length = %d, want %d", len(dat), commanderFrameLen)
		}
		if dat[15] != crtp.Checksum(dat[:15]) {
			t.Errorf("checksum byte = %#x, want sum over first 15 bytes %#x", dat[15], crtp.Checksum(dat[:15]))
		}
	}
}

func TestCommanderRoundTrip(t *testing.T) {
	in := &CommanderRequest{Roll: 15.5, Pitch: -21, Yaw: 50, Thrust: 54100}
	out, err := ParseCommanderDatagram(in.Datagram())
	if err != nil {
		t.Fatal(err)
	}
	if out.Roll != in.Roll || out.Pitch != in.Pitch || out.Yaw != in.Yaw {
		t.Errorf("decoded %+v, want %+v", out, in)
	}
	if out.Thrust != in.Thrust {
		t.Errorf("thrust = %d, want %d", out.Thrust, in.Thrust)
	}
}

func TestParseCommanderDatagramRejects(t *testing.T) {
	good := (&CommanderRequest{Thrust: 1000}).Datagram()

	short := good[:15]
	if _, err := ParseCommanderDatagram(short); err != crtp.ErrorPacketTooShort {
		t.Errorf("short frame: err = %v, want %v", err, crtp.ErrorPacketTooShort)
	}

	wrongHeader := append([]byte(nil), good...)
	wrongHeader[0] = 0x70
	if _, err := ParseCommanderDatagram(wrongHeader); err != crtp.ErrorPacketIncorrectType {
		t.Errorf("wrong header: err = %v, want %v", err, crtp.ErrorPacketIncorrectType)
	}

	corrupt := append([]byte(nil), good...)
	corrupt[15]++
	if _, err := ParseCommanderDatagram(corrupt); err != crtp.ErrorPacketBadChecksum {
		t.Errorf("corrupt frame: err = %v, want %v", err, crtp.ErrorPacketBadChecksum)
	}
}

func TestHoverSetpointDatagram(t *testing.T) {
	req := &HoverSetpointRequest{VX: 0.5, VY: -0.25, YawRate: 0, Height: 1.0}
	dat := req.Datagram()

	if len(dat) != hoverChecksumSpan+1 {
		t.Fatalf("frame length = %d, want %d", len(dat), hoverChecksumSpan+1)
	}
	if dat[0] != 0x7C {
		t.Errorf("header = %#x, want 0x7C", dat[0])
	}
	if dat[1] != hoverSetpointCommand {
		t.Errorf("command = %#x, want %#x", dat[1], hoverSetpointCommand)
	}
	if !bytes.Equal(dat[2:6], float32ToBytes(0.5)) {
		t.Errorf("vx bytes = % x", dat[2:6])
	}
	if !bytes.Equal(dat[6:10], float32ToBytes(-0.25)) {
		t.Errorf("vy bytes = % x", dat[6:10])
	}
	if !bytes.Equal(dat[14:18], float32ToBytes(1.0)) {
		t.Errorf("height bytes = % x", dat[14:18])
	}
	// the checksum spans exactly the first 18 bytes
	if dat[18] != crtp.Checksum(dat[:hoverChecksumSpan]) {
		t.Errorf("checksum = %#x, want %#x", dat[18], crtp.Checksum(dat[:hoverChecksumSpan]))
	}
}

func TestRequestFrameRendering(t *testing.T) {
	// both outbound request kinds render through the shared header+payload
	// path before their per-type checksum is appended
	requests := []crtp.RequestPacketPtr{
		&CommanderRequest{Roll: 5, Thrust: 1000},
		&HoverSetpointRequest{Height: 0.5},
	}
	for _, req := range requests {
		dat := requestFrame(req)
		if dat[0] != crtp.HeaderBytes(req.Port(), req.Channel()) {
			t.Errorf("header = %#x, want %#x", dat[0], crtp.HeaderBytes(req.Port(), req.Channel()))
		}
		if len(dat) != len(req.Bytes())+1 {
			t.Errorf("frame length = %d, want %d", len(dat), len(req.Bytes())+1)
		}
		if !bytes.Equal(dat[1:], req.Bytes()) {
			t.Errorf("payload = % x, want % x", dat[1:], req.Bytes())
		}
	}
}

func TestResponseClassification(t *testing.T) {
	voltage := append([]byte{0x52, 0x01, 0x10, 0x20, 0x30}, float32ToBytes(3.85)...)

	var echo LinkEchoResponse
	if err := echo.LoadFromBytes([]byte{0xFD, 0x00, 0xFD}); err != nil {
		t.Errorf("heartbeat echo rejected: %v", err)
	}
	if err := echo.LoadFromBytes(voltage); err != crtp.ErrorPacketIncorrectType {
		t.Errorf("voltage frame accepted as echo: %v", err)
	}

	var volt VoltageResponse
	if err := volt.LoadFromBytes(voltage); err != nil {
		t.Fatalf("voltage frame rejected: %v", err)
	}
	if volt.Voltage != 3.85 {
		t.Errorf("voltage = %v, want 3.85", volt.Voltage)
	}
	if err := volt.LoadFromBytes(voltage[:8]); err != crtp.ErrorPacketTooShort {
		t.Errorf("truncated voltage frame: err = %v", err)
	}
	wrongBlock := append([]byte(nil), voltage...)
	wrongBlock[1] = 0x02
	if err := volt.LoadFromBytes(wrongBlock); err != crtp.ErrorPacketIncorrectType {
		t.Errorf("foreign log block accepted: %v", err)
	}

	var probe HeightProbeResponse
	if err := probe.LoadFromBytes([]byte{0x2D, 0x02, 0x00, 0x00, 0x01}); err != nil || !probe.Present {
		t.Errorf("present probe: err = %v, present = %v", err, probe.Present)
	}
	if err := probe.LoadFromBytes([]byte{0x2D, 0x02, 0x00, 0x00, 0x00}); err != nil || probe.Present {
		t.Errorf("absent probe: err = %v, present = %v", err, probe.Present)
	}
	if err := probe.LoadFromBytes([]byte{0x2D, 0x02, 0x00}); err != crtp.ErrorPacketTooShort {
		t.Errorf("truncated probe: err = %v", err)
	}
}
