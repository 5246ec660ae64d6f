package tzsp

import "net"

// Tag ids.
const (
	TagPadding   uint8 = 0x00
	TagEnd       uint8 = 0x01
	TagSignal    uint8 = 0x0A
	TagRate      uint8 = 0x0C
	TagFCS       uint8 = 0x11
	TagChannel   uint8 = 0x12
	TagLength    uint8 = 0x29
	TagSensorMAC uint8 = 0x3C
)

const (
	fcsTagLen    = 1
	sensorTagLen = 6
)

// Envelope is one decoded datagram. Payload and Sensor are views into the
// datagram passed to Decode.
type Envelope struct {
	Header  Header
	Payload []byte
	// Sensor is nil when the datagram carried no sensor tag.
	Sensor net.HardwareAddr
}

// Decoder walks TZSP envelopes.
type Decoder struct {
	// AllowFCSErrors keeps frames whose FCS tag flags a checksum failure.
	AllowFCSErrors bool
}

// Decode parses the header and tag stream of datagram. It never reads outside
// datagram and never copies it.
func (d Decoder) Decode(datagram []byte) (Envelope, error) {
	if len(datagram) <= HeaderLen {
		return Envelope{}, ErrShortHeader
	}
	h, err := DecodeHeader(datagram)
	if err != nil {
		return Envelope{}, err
	}
	if err := h.Validate(); err != nil {
		return Envelope{}, err
	}

	env := Envelope{Header: h}
	payload, sensor, err := d.walkTags(datagram[HeaderLen:])
	if err != nil {
		return Envelope{}, err
	}
	env.Payload = payload
	env.Sensor = sensor
	return env, nil
}

// Decode uses a strict decoder.
func Decode(datagram []byte) (Envelope, error) {
	return Decoder{}.Decode(datagram)
}

func (d Decoder) walkTags(tags []byte) ([]byte, net.HardwareAddr, error) {
	var sensor net.HardwareAddr
	n := len(tags)
	i := 0
	for i < n {
		tag := tags[i]
		i++

		if tag == TagPadding {
			continue
		}
		// every other tag needs at least one more byte
		if i >= n {
			return nil, nil, ErrTruncated
		}
		if tag == TagEnd {
			return tags[i:], sensor, nil
		}

		tagLen := int(tags[i])
		i++
		// value plus one trailing byte must fit; senders rely on this boundary
		if i+tagLen >= n {
			return nil, nil, ErrTagOverrun
		}
		value := tags[i : i+tagLen]

		switch {
		case tag == TagFCS && tagLen == fcsTagLen:
			if !d.AllowFCSErrors && value[0] != 0 {
				return nil, nil, ErrFCS
			}
		case tag == TagSensorMAC && tagLen == sensorTagLen:
			sensor = net.HardwareAddr(value[:sensorTagLen:sensorTagLen])
		}

		i += tagLen
	}
	return nil, nil, ErrMissingEnd
}
