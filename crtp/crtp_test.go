package crtp

import "testing"

func TestHeaderBytes(t *testing.T) {
	if b := HeaderBytes(PortCommander, 0); b != 0x30 {
		t.Errorf("commander header = %#x, want 0x30", b)
	}
	if b := HeaderBytes(PortGeneric, 0x0C); b != 0x7C {
		t.Errorf("generic setpoint header = %#x, want 0x7C", b)
	}
	if b := HeaderBytes(PortLink, ChannelLinkEcho); b != 0xFD {
		t.Errorf("link echo header = %#x, want 0xFD", b)
	}
}

func TestHeaderFields(t *testing.T) {
	h := Header(0x52)
	if h.Port() != PortLog {
		t.Errorf("port = %d, want %d", h.Port(), PortLog)
	}
	if h.Channel() != 2 {
		t.Errorf("channel = %d, want 2", h.Channel())
	}

	h = Header(0xFD)
	if h.Port() != PortLink || h.Channel() != ChannelLinkEcho {
		t.Errorf("0xFD decoded as port %d channel %d", h.Port(), h.Channel())
	}
}

func TestChecksum(t *testing.T) {
	if c := Checksum(nil); c != 0 {
		t.Errorf("empty checksum = %d, want 0", c)
	}
	if c := Checksum([]byte{1, 2, 3}); c != 6 {
		t.Errorf("checksum = %d, want 6", c)
	}
	// wraps mod 256
	if c := Checksum([]byte{0xFF, 0x02}); c != 1 {
		t.Errorf("checksum = %d, want 1", c)
	}
}
