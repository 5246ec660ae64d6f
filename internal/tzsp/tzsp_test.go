package tzsp

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/danmuck/tzspd/internal/testutil/testlog"
)

var frame = []byte{
	0x80, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x00, 0x11, 0x22, 0x33,
	0x44, 0x55, 0x10, 0x00, 0xde, 0xad,
}

func mustEncode(t *testing.T, payload []byte, tags ...Tag) []byte {
	t.Helper()
	b, err := Encode(payload, tags...)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return b
}

func TestDecodePaddingAndEndYieldsPayload(t *testing.T) {
	testlog.Start(t)
	datagram := mustEncode(t, frame, PaddingTag(), PaddingTag(), PaddingTag())

	env, err := Decode(datagram)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(env.Payload, frame) {
		t.Fatalf("payload mismatch: %x", env.Payload)
	}
	if env.Sensor != nil {
		t.Fatalf("expected no sensor, got %s", env.Sensor)
	}
	if env.Header != SupportedHeader() {
		t.Fatalf("unexpected header: %+v", env.Header)
	}
}

func TestDecodeRecoversSensorAsView(t *testing.T) {
	mac := net.HardwareAddr{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	datagram := mustEncode(t, frame, ChannelTag(6), SensorTag(mac), FCSTag(false))

	env, err := Decode(datagram)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(env.Sensor, mac) {
		t.Fatalf("sensor mismatch: %s", env.Sensor)
	}
	// the sensor must alias the datagram, not a copy
	datagram[HeaderLen+3+2] = 0x01
	if env.Sensor[0] != 0x01 {
		t.Fatalf("expected sensor to alias datagram buffer")
	}
	if cap(env.Sensor) != 6 {
		t.Fatalf("expected sensor capacity clipped to 6, got %d", cap(env.Sensor))
	}
}

func TestDecodeLastSensorWins(t *testing.T) {
	first := net.HardwareAddr{1, 2, 3, 4, 5, 6}
	second := net.HardwareAddr{6, 5, 4, 3, 2, 1}
	env, err := Decode(mustEncode(t, frame, SensorTag(first), SensorTag(second)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(env.Sensor, second) {
		t.Fatalf("expected last sensor, got %s", env.Sensor)
	}
}

func TestDecodeIgnoresSensorWithWrongLength(t *testing.T) {
	env, err := Decode(mustEncode(t, frame, Tag{ID: TagSensorMAC, Value: []byte{1, 2, 3}}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Sensor != nil {
		t.Fatalf("expected short sensor tag skipped, got %s", env.Sensor)
	}
}

func TestDecodeHeaderRejections(t *testing.T) {
	good := mustEncode(t, frame)
	cases := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
		detail string
	}{
		{"empty", func(b []byte) []byte { return nil }, ErrShortHeader, ""},
		{"header only", func(b []byte) []byte { return b[:HeaderLen] }, ErrShortHeader, ""},
		{"version", func(b []byte) []byte { b[0] = 2; return b }, ErrUnsupportedHeader, "version 2"},
		{"type", func(b []byte) []byte { b[1] = 1; return b }, ErrUnsupportedHeader, "type 1"},
		{"protocol", func(b []byte) []byte { b[3] = 0x01; return b }, ErrUnsupportedHeader, "protocol 0x0001"},
		{"protocol byte order", func(b []byte) []byte { b[2], b[3] = 0x12, 0x00; return b }, ErrUnsupportedHeader, "protocol 0x1200"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.mutate(append([]byte(nil), good...))
			_, err := Decode(in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !strings.Contains(err.Error(), tc.detail) {
				t.Fatalf("expected %q in %q", tc.detail, err)
			}
		})
	}
}

func TestDecodeTagStreamFailures(t *testing.T) {
	hdr := EncodeHeader(SupportedHeader())
	cases := []struct {
		name string
		tags []byte
		want error
	}{
		{"only padding", []byte{TagPadding, TagPadding}, ErrMissingEnd},
		{"end without payload", []byte{TagPadding, TagEnd}, ErrTruncated},
		{"tag without length", []byte{TagChannel}, ErrTruncated},
		{"length past end", []byte{TagChannel, 5, 1, 2}, ErrTagOverrun},
		{"value reaches end exactly", []byte{TagChannel, 2, 1, 2}, ErrTagOverrun},
		{"value leaves no room", []byte{TagRate, 1, 9}, ErrTagOverrun},
		{"no end after tags", []byte{TagChannel, 1, 6, TagPadding}, ErrMissingEnd},
		{"fcs flagged", []byte{TagFCS, 1, 1, TagEnd, 0x80}, ErrFCS},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := append(append([]byte(nil), hdr...), tc.tags...)
			if _, err := Decode(in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDecodeBoundaryAcceptsOneTrailingByte(t *testing.T) {
	// value ends one byte before the region end: that byte is the end tag,
	// which then has nothing after it.
	in := append(EncodeHeader(SupportedHeader()), TagChannel, 1, 6, TagEnd)
	if _, err := Decode(in); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	in = append(in, 0x80)
	env, err := Decode(in)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(env.Payload, []byte{0x80}) {
		t.Fatalf("unexpected payload: %x", env.Payload)
	}
}

func TestDecoderAllowFCSErrors(t *testing.T) {
	datagram := mustEncode(t, frame, FCSTag(true))
	if _, err := Decode(datagram); !errors.Is(err, ErrFCS) {
		t.Fatalf("expected ErrFCS in strict mode, got %v", err)
	}
	env, err := Decoder{AllowFCSErrors: true}.Decode(datagram)
	if err != nil {
		t.Fatalf("tolerant decode: %v", err)
	}
	if !bytes.Equal(env.Payload, frame) {
		t.Fatalf("payload mismatch")
	}
}

func TestDecodeSkipsUnknownTags(t *testing.T) {
	datagram := mustEncode(t, frame, Tag{ID: 0x7F, Value: bytes.Repeat([]byte{0xEE}, 40)})
	env, err := Decode(datagram)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(env.Payload, frame) {
		t.Fatalf("payload mismatch")
	}
}

func TestHeaderValidateReportsField(t *testing.T) {
	err := Header{Version: 1, Type: 0, Protocol: 1}.Validate()
	if !errors.Is(err, ErrUnsupportedHeader) {
		t.Fatalf("expected ErrUnsupportedHeader, got %v", err)
	}
	if err.Error() != "tzsp: unsupported header: protocol 0x0001" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if err := SupportedHeader().Validate(); err != nil {
		t.Fatalf("supported header rejected: %v", err)
	}
}

func TestEncodeTagRejectsOversizedValue(t *testing.T) {
	_, err := Encode(frame, Tag{ID: TagChannel, Value: make([]byte, 256)})
	if !errors.Is(err, ErrTagTooLarge) {
		t.Fatalf("expected ErrTagTooLarge, got %v", err)
	}
	if _, err := EncodeTag(Tag{ID: TagEnd}); err == nil {
		t.Fatalf("expected explicit end tag rejected")
	}
}

func FuzzDecode(f *testing.F) {
	seed, _ := Encode(frame, SensorTag(net.HardwareAddr{1, 2, 3, 4, 5, 6}), FCSTag(false))
	f.Add(seed)
	f.Add([]byte{1, 0, 0, 0x12, TagChannel, 0xFF})
	f.Add([]byte{1, 0, 0, 0x12, TagPadding})
	f.Fuzz(func(t *testing.T, in []byte) {
		env, err := Decode(in)
		if err != nil {
			return
		}
		if len(env.Payload) == 0 || len(env.Payload) > len(in)-HeaderLen {
			t.Fatalf("payload out of range: %d of %d", len(env.Payload), len(in))
		}
		if env.Sensor != nil && len(env.Sensor) != 6 {
			t.Fatalf("bad sensor length %d", len(env.Sensor))
		}
	})
}
