package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestDecodeEncode_RoundTripStable(t *testing.T) {
	codec := NewMulawCodec()
	for i := 0; i < 256; i++ {
		b := byte(i)
		pcm := codec.DecodeFromTelephony([]byte{b})
		back := codec.EncodeForTelephony(pcm)
		if len(back) != 1 {
			t.Fatalf("byte 0x%02x: expected 1 output byte, got %d", b, len(back))
		}
		// Re-decoding must land on exactly the same linear value: lossy-stable,
		// not lossy-drifting. Byte equality is not required because negative
		// zero re-encodes as positive zero.
		pcm2 := codec.DecodeFromTelephony(back)
		if !bytes.Equal(pcm, pcm2) {
			t.Fatalf("byte 0x%02x: decode drifted: % x vs % x", b, pcm, pcm2)
		}
	}
}

func TestEncodeDecode_WithinQuantizationError(t *testing.T) {
	codec := NewMulawCodec()
	samples := []int16{-32768, -32635, -10000, -1000, -100, -5, 0, 5, 100, 1000, 10000, 32635, 32767}
	for _, s := range samples {
		pcm := make([]byte, 2)
		binary.LittleEndian.PutUint16(pcm, uint16(s))
		decoded := codec.DecodeFromTelephony(codec.EncodeForTelephony(pcm))
		got := int16(binary.LittleEndian.Uint16(decoded))

		ref := int32(s)
		if ref > mulawClip {
			ref = mulawClip
		}
		if ref < -mulawClip {
			ref = -mulawClip
		}
		diff := int32(got) - ref
		if diff < 0 {
			diff = -diff
		}
		if diff > 1024 {
			t.Fatalf("sample %d: decoded %d, error %d exceeds quantization bound", s, got, diff)
		}
		if ref > -100 && ref < 100 && diff > 16 {
			t.Fatalf("small sample %d: decoded %d, error %d too large", s, got, diff)
		}
	}
}

func TestEncodeForTelephony_TruncatedInput(t *testing.T) {
	codec := NewMulawCodec()
	if got := codec.EncodeForTelephony(nil); len(got) != 0 {
		t.Fatalf("expected empty output for nil input, got %d bytes", len(got))
	}
	// Trailing odd byte is dropped, not an error.
	if got := codec.EncodeForTelephony([]byte{0x12, 0x34, 0x56}); len(got) != 1 {
		t.Fatalf("expected 1 sample from 3 bytes, got %d", len(got))
	}
}

func TestDecodeFromTelephony_Empty(t *testing.T) {
	codec := NewMulawCodec()
	if got := codec.DecodeFromTelephony(nil); len(got) != 0 {
		t.Fatalf("expected empty output for nil input, got %d bytes", len(got))
	}
}
