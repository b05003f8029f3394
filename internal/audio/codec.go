package audio

// Codec transcodes between the telephony wire format (8-bit μ-law) and the
// speech model's format (16-bit little-endian linear PCM). Implementations
// must be stateless and safe for concurrent use; both directions operate
// sample by sample.
type Codec interface {
	// EncodeForTelephony converts PCM16 sample bytes to μ-law bytes.
	// A trailing odd byte is dropped rather than treated as an error.
	EncodeForTelephony(pcm []byte) []byte
	// DecodeFromTelephony converts μ-law bytes to PCM16 sample bytes.
	DecodeFromTelephony(mulaw []byte) []byte
}
