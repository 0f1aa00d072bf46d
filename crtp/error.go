package crtp

import "fmt"

type crtpError uint8

func (e crtpError) Error() string {
	return fmt.Sprintf("crtp: %s", crtpErrorString[e])
}

const (
	ErrorPacketIncorrectType crtpError = iota
	ErrorPacketTooShort
	ErrorPacketBadChecksum
)

var crtpErrorString = map[crtpError]string{
	ErrorPacketIncorrectType: "Cannot decode packet from bytes: incorrect format",
	ErrorPacketTooShort:      "Cannot decode packet from bytes: too short",
	ErrorPacketBadChecksum:   "Cannot decode packet from bytes: checksum mismatch",
}
