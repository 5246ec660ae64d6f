package tzsp

import (
	"encoding/binary"
	"fmt"
)

const HeaderLen = 4

// Supported header values. Only received-tagged 802.11 frames are accepted.
const (
	Version            uint8  = 0x01
	TypeReceivedTagged uint8  = 0x00
	ProtoIEEE80211     uint16 = 0x0012
)

// Header is the fixed envelope header.
type Header struct {
	Version  uint8
	Type     uint8
	Protocol uint16
}

func SupportedHeader() Header {
	return Header{Version: Version, Type: TypeReceivedTagged, Protocol: ProtoIEEE80211}
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderLen)
	buf[0] = h.Version
	buf[1] = h.Type
	binary.BigEndian.PutUint16(buf[2:4], h.Protocol)
	return buf
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, ErrShortHeader
	}
	return Header{
		Version:  b[0],
		Type:     b[1],
		Protocol: binary.BigEndian.Uint16(b[2:4]),
	}, nil
}

// Validate reports whether h is the single supported version/type/protocol triple.
func (h Header) Validate() error {
	if h.Version != Version {
		return fmt.Errorf("%w: version %d", ErrUnsupportedHeader, h.Version)
	}
	if h.Type != TypeReceivedTagged {
		return fmt.Errorf("%w: type %d", ErrUnsupportedHeader, h.Type)
	}
	if h.Protocol != ProtoIEEE80211 {
		return fmt.Errorf("%w: protocol 0x%04x", ErrUnsupportedHeader, h.Protocol)
	}
	return nil
}
