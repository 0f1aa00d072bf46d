package espdrone

import "math"

// everything on the wire is little endian

func float32ToBytes(f float32) []byte {
	bits := math.Float32bits(f)
	return []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
}

func bytesToFloat32(b []byte) float32 {
	_ = b[3]
	bits := uint32(b[0]) | (uint32(b[1]) << 8) | (uint32(b[2]) << 16) | (uint32(b[3]) << 24)
	return math.Float32frombits(bits)
}

func uint16ToBytes(v uint16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}

func bytesToUint16(b []byte) uint16 {
	_ = b[1]
	return uint16(b[0]) | (uint16(b[1]) << 8)
}
