// Package target parses and matches forwarding rules of the form
// PORT[-END][,SENSOR_MAC].
package target

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"net"
	"strconv"
	"strings"
)

const (
	MinPort = 1
	MaxPort = 65535

	macTextLen = 17
	macLen     = 6
)

var (
	ErrInvalidMAC       = errors.New("target: invalid MAC address")
	ErrInvalidPort      = errors.New("target: invalid port value")
	ErrInvalidPortRange = errors.New("target: invalid port range")
	ErrNoTargets        = errors.New("target: no output specified")
)

// Target is one validated forwarding rule. It is immutable once parsed.
type Target struct {
	PortStart uint16
	PortEnd   uint16
	// Sensor restricts the rule to datagrams tagged with this sensor MAC.
	Sensor net.HardwareAddr
}

// ParseError carries the rule text that failed to parse.
type ParseError struct {
	Spec string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v (%s)", e.Err, e.Spec)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse validates a single PORT[-END][,MAC] rule.
func Parse(spec string) (Target, error) {
	ports, mac, hasMAC := strings.Cut(spec, ",")

	var sensor net.HardwareAddr
	if hasMAC {
		var err error
		sensor, err = parseMAC(mac)
		if err != nil {
			return Target{}, err
		}
	}

	startText, endText, hasEnd := strings.Cut(ports, "-")
	start, err := parsePort(startText)
	if err != nil {
		return Target{}, err
	}
	end := start
	if hasEnd {
		end, err = parsePort(endText)
		if err != nil {
			return Target{}, err
		}
	}
	if end < start {
		return Target{}, ErrInvalidPortRange
	}

	return Target{PortStart: start, PortEnd: end, Sensor: sensor}, nil
}

func parsePort(raw string) (uint16, error) {
	v, err := strconv.Atoi(raw)
	if err != nil || v < MinPort || v > MaxPort {
		return 0, ErrInvalidPort
	}
	return uint16(v), nil
}

// parseMAC accepts only the six colon-separated two-digit hex octet form.
func parseMAC(raw string) (net.HardwareAddr, error) {
	if len(raw) != macTextLen || strings.Count(raw, ":") != macLen-1 {
		return nil, ErrInvalidMAC
	}
	mac, err := net.ParseMAC(raw)
	if err != nil || len(mac) != macLen {
		return nil, ErrInvalidMAC
	}
	return mac, nil
}

// Matches reports whether a datagram from sensor should use this rule. A nil
// sensor never matches a filtered rule.
func (t Target) Matches(sensor []byte) bool {
	if t.Sensor == nil {
		return true
	}
	return len(sensor) == macLen && bytes.Equal(t.Sensor, sensor)
}

// Ports yields every port in the inclusive range.
func (t Target) Ports() iter.Seq[uint16] {
	return func(yield func(uint16) bool) {
		for p := int(t.PortStart); p <= int(t.PortEnd); p++ {
			if !yield(uint16(p)) {
				return
			}
		}
	}
}

// PortCount is the number of destinations this rule sends to.
func (t Target) PortCount() int {
	return int(t.PortEnd) - int(t.PortStart) + 1
}

func (t Target) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(t.PortStart)))
	if t.PortEnd != t.PortStart {
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(int(t.PortEnd)))
	}
	if t.Sensor != nil {
		b.WriteByte(',')
		b.WriteString(strings.ToUpper(t.Sensor.String()))
	}
	return b.String()
}
