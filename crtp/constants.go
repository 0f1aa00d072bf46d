package crtp

const (
	PortConsole   Port = 0x00
	PortParam          = 0x02
	PortCommander      = 0x03
	PortMem            = 0x04
	PortLog            = 0x05
	PortPosition       = 0x06
	PortGeneric        = 0x07
	PortPlatform       = 0x0D
	PortLink           = 0x0F
)

// Channel the firmware echoes heartbeat pings back on.
const ChannelLinkEcho Channel = 0x0D

type Header byte
type Port byte
type Channel byte

// The UDP link carries the full low nibble as the channel; there are no
// link-quality bits as on the radio transport.
func HeaderBytes(port Port, channel Channel) byte {
	return ((byte(port) & 0x0F) << 4) |
		((byte(channel) & 0x0F) << 0)
}

func (header Header) Channel() Channel {
	return Channel((byte(header) >> 0) & 0x0F)
}

func (header Header) Port() Port {
	return Port((byte(header) >> 4) & 0x0F)
}

// Checksum is the single trailing integrity byte used on the UDP link:
// the low 8 bits of the sum of the covered bytes. Not cryptographic.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}
