package tzsp

import (
	"fmt"
	"net"
)

// Tag is one length-carrying envelope tag.
type Tag struct {
	ID    uint8
	Value []byte
}

func SensorTag(mac net.HardwareAddr) Tag {
	return Tag{ID: TagSensorMAC, Value: append([]byte(nil), mac...)}
}

func FCSTag(failed bool) Tag {
	var v byte
	if failed {
		v = 1
	}
	return Tag{ID: TagFCS, Value: []byte{v}}
}

func ChannelTag(channel uint8) Tag {
	return Tag{ID: TagChannel, Value: []byte{channel}}
}

// PaddingTag is encoded as the single padding id byte.
func PaddingTag() Tag {
	return Tag{ID: TagPadding}
}

func EncodeTag(t Tag) ([]byte, error) {
	if t.ID == TagPadding {
		return []byte{TagPadding}, nil
	}
	if t.ID == TagEnd {
		return nil, fmt.Errorf("tzsp: end tag is appended by Encode")
	}
	if len(t.Value) > 0xFF {
		return nil, fmt.Errorf("%w: id 0x%02x len %d", ErrTagTooLarge, t.ID, len(t.Value))
	}
	buf := make([]byte, 2+len(t.Value))
	buf[0] = t.ID
	buf[1] = uint8(len(t.Value))
	copy(buf[2:], t.Value)
	return buf, nil
}

// Encode wraps frame in a supported header, the given tags and an end tag.
func Encode(frame []byte, tags ...Tag) ([]byte, error) {
	out := EncodeHeader(SupportedHeader())
	for _, t := range tags {
		b, err := EncodeTag(t)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	out = append(out, TagEnd)
	out = append(out, frame...)
	return out, nil
}
