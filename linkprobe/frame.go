package linkprobe

import (
	"encoding/binary"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Stream framing sync bytes.
const (
	Start1 byte = 0x94
	Start2 byte = 0xC3
)

// HeaderLen is the size of the sync marker plus the big-endian length.
const HeaderLen = 4

// MaxPayload is the largest payload the framing admits.
const MaxPayload = 512

// WantConfigID is the nonce carried in the preamble's config request.
const WantConfigID uint32 = 0x6b42

// toRadioWantConfigID is the ToRadio field number of want_config_id.
const toRadioWantConfigID protowire.Number = 3

// ErrPayloadTooLarge is returned when a frame payload exceeds MaxPayload.
var ErrPayloadTooLarge = errors.New("linkprobe: payload too large")

// Frame prefixes payload with the sync marker and its length.
func Frame(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(payload), MaxPayload)
	}
	out := make([]byte, HeaderLen, HeaderLen+len(payload))
	out[0] = Start1
	out[1] = Start2
	binary.BigEndian.PutUint16(out[2:], uint16(len(payload)))
	return append(out, payload...), nil
}

// Preamble returns the framed ToRadio{want_config_id} request that wakes a
// stream client session.
func Preamble() []byte {
	payload := protowire.AppendTag(nil, toRadioWantConfigID, protowire.VarintType)
	payload = protowire.AppendVarint(payload, uint64(WantConfigID))
	frame, _ := Frame(payload)
	return frame
}

// HasSyncMarker reports whether b begins with the stream sync marker.
func HasSyncMarker(b []byte) bool {
	return len(b) >= 2 && b[0] == Start1 && b[1] == Start2
}
