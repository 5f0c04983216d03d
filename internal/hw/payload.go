// internal/hw/payload.go
package hw

// Payload is a configuration value as 16-bit register words.
// 32-bit quantities occupy two words, high word first (Modbus order).
type Payload []uint16

// Words builds a payload from word values.
func Words(v ...uint16) Payload {
	return Payload(v)
}

// Uint32s builds a payload of 32-bit values, two words each.
func Uint32s(v ...uint32) Payload {
	out := make(Payload, 0, 2*len(v))
	for _, x := range v {
		out = append(out, uint16(x>>16), uint16(x))
	}
	return out
}

// Uint32 returns the 32-bit value at pair position i (words 2i, 2i+1).
func (p Payload) Uint32(i int) uint32 {
	if 2*i+1 >= len(p) {
		return 0
	}
	return uint32(p[2*i])<<16 | uint32(p[2*i+1])
}

// Word returns word i or 0 if out of range.
func (p Payload) Word(i int) uint16 {
	if i < 0 || i >= len(p) {
		return 0
	}
	return p[i]
}

// Bool encodes a flag as one word.
func Bool(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

// Bytes packs the payload big-endian, the register memory order.
func (p Payload) Bytes() []byte {
	out := make([]byte, len(p)*2)
	for i, r := range p {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}

// FromBytes unpacks big-endian register bytes. A trailing odd byte is dropped.
func FromBytes(data []byte) Payload {
	n := len(data) / 2
	out := make(Payload, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
