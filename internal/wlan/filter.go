// Package wlan classifies raw 802.11 frames and decides which ones are relayed.
package wlan

import "github.com/gopacket/gopacket/layers"

// MinHeaderLen is the shortest 802.11 MAC header that is relayed.
const MinHeaderLen = 24

// Frame control byte 0 is subtype<<4 | type<<2 | version. layers.Dot11Type
// packs subtype<<2 | type, so shifting it left by two gives byte 0 with a zero
// protocol version.
func controlByte(t layers.Dot11Type) uint8 {
	return uint8(t) << 2
}

// Low nibble of frame control byte 0 (type + version) per main frame type.
var (
	nibbleManagement = controlByte(layers.Dot11TypeMgmt)
	nibbleControl    = controlByte(layers.Dot11TypeCtrl)
	nibbleData       = controlByte(layers.Dot11TypeData)
	nibbleExtension  = controlByte(layers.Dot11TypeReserved)
)

var (
	beaconMarker        = controlByte(layers.Dot11TypeMgmtBeacon)
	probeResponseMarker = controlByte(layers.Dot11TypeMgmtProbeResp)
	// MikroTik NV2 beacons travel as data frames with these flags.
	nv2Marker = [2]uint8{controlByte(layers.Dot11TypeData), 0x90}
)

// Category is the main 802.11 frame type with a zero protocol version.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryManagement
	CategoryControl
	CategoryData
	CategoryExtension
)

func (c Category) String() string {
	switch c {
	case CategoryManagement:
		return "management"
	case CategoryControl:
		return "control"
	case CategoryData:
		return "data"
	case CategoryExtension:
		return "extension"
	default:
		return "unknown"
	}
}

// Classify maps the frame control low nibble to a category. Frames with a
// nonzero protocol version are CategoryUnknown.
func Classify(frame []byte) Category {
	if len(frame) == 0 {
		return CategoryUnknown
	}
	switch frame[0] & 0x0F {
	case nibbleManagement:
		return CategoryManagement
	case nibbleControl:
		return CategoryControl
	case nibbleData:
		return CategoryData
	case nibbleExtension:
		return CategoryExtension
	default:
		return CategoryUnknown
	}
}

// IsBeacon reports beacons, probe responses and NV2 beacons.
func IsBeacon(frame []byte) bool {
	if len(frame) == 0 {
		return false
	}
	switch frame[0] {
	case beaconMarker, probeResponseMarker:
		return true
	}
	return len(frame) >= 2 && frame[0] == nv2Marker[0] && frame[1] == nv2Marker[1]
}

// Verdict explains a filter decision.
type Verdict string

const (
	VerdictPass       Verdict = "pass"
	VerdictShort      Verdict = "short_frame"
	VerdictManagement Verdict = "discard_management"
	VerdictControl    Verdict = "discard_control"
	VerdictData       Verdict = "discard_data"
	VerdictExtension  Verdict = "discard_extension"
	VerdictNotBeacon  Verdict = "not_beacon"
)

// Filter holds the per-category discard switches and beacon-only mode.
type Filter struct {
	DiscardManagement bool
	DiscardControl    bool
	DiscardData       bool
	DiscardExtension  bool
	BeaconOnly        bool
}

// Check runs the length, category and beacon checks in that order.
func (f Filter) Check(frame []byte) Verdict {
	if len(frame) < MinHeaderLen {
		return VerdictShort
	}
	switch Classify(frame) {
	case CategoryManagement:
		if f.DiscardManagement {
			return VerdictManagement
		}
	case CategoryControl:
		if f.DiscardControl {
			return VerdictControl
		}
	case CategoryData:
		if f.DiscardData {
			return VerdictData
		}
	case CategoryExtension:
		if f.DiscardExtension {
			return VerdictExtension
		}
	}
	if f.BeaconOnly && !IsBeacon(frame) {
		return VerdictNotBeacon
	}
	return VerdictPass
}
