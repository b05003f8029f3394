package audio

import (
	"encoding/binary"

	"github.com/recouphq/voicebridge/internal/audio"
)

// G.711 μ-law companding constants. The far end is real telephony hardware
// hardcoded to this curve, so the standard law is implemented exactly.
const (
	mulawBias = 0x84
	mulawClip = 32635
)

type MulawCodec struct{}

func NewMulawCodec() audio.Codec {
	return &MulawCodec{}
}

func (c *MulawCodec) EncodeForTelephony(pcm []byte) []byte {
	samples := len(pcm) / 2
	out := make([]byte, samples)
	for i := 0; i < samples; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		out[i] = encodeSample(s)
	}
	return out
}

func (c *MulawCodec) DecodeFromTelephony(mulaw []byte) []byte {
	out := make([]byte, len(mulaw)*2)
	for i, b := range mulaw {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(decodeSample(b)))
	}
	return out
}

func encodeSample(s int16) byte {
	v := int32(s)
	sign := byte(0)
	if v < 0 {
		v = -v
		sign = 0x80
	}
	if v > mulawClip {
		v = mulawClip
	}
	v += mulawBias

	exponent := byte(7)
	for mask := int32(0x4000); exponent > 0 && v&mask == 0; exponent-- {
		mask >>= 1
	}
	mantissa := byte(v>>(exponent+3)) & 0x0F
	return ^(sign | exponent<<4 | mantissa)
}

func decodeSample(b byte) int16 {
	b = ^b
	sign := b & 0x80
	exponent := (b >> 4) & 0x07
	mantissa := b & 0x0F
	v := ((int32(mantissa)<<3 + mulawBias) << exponent) - mulawBias
	if sign != 0 {
		v = -v
	}
	return int16(v)
}
