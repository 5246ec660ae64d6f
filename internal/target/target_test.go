package target

import (
	"errors"
	"net"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danmuck/tzspd/internal/testutil/testlog"
)

func TestParseSinglePort(t *testing.T) {
	testlog.Start(t)
	for _, p := range []int{1, 80, 9091, 37008, 65535} {
		got, err := Parse(strconv.Itoa(p))
		if err != nil {
			t.Fatalf("parse %d: %v", p, err)
		}
		want := Target{PortStart: uint16(p), PortEnd: uint16(p)}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("port %d mismatch (-want +got):\n%s", p, diff)
		}
	}
}

func TestParseRange(t *testing.T) {
	got, err := Parse("9091-9095")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.PortStart != 9091 || got.PortEnd != 9095 || got.Sensor != nil {
		t.Fatalf("unexpected target: %+v", got)
	}
	if got.PortCount() != 5 {
		t.Fatalf("unexpected port count: %d", got.PortCount())
	}

	if _, err := Parse("9095-9091"); !errors.Is(err, ErrInvalidPortRange) {
		t.Fatalf("expected ErrInvalidPortRange, got %v", err)
	}
	if _, err := Parse("9091-9091"); err != nil {
		t.Fatalf("expected equal bounds accepted: %v", err)
	}
}

func TestParseWithSensor(t *testing.T) {
	got, err := Parse("9091,aa:BB:cc:DD:ee:FF")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := net.HardwareAddr{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	if diff := cmp.Diff(want, got.Sensor); diff != "" {
		t.Fatalf("sensor mismatch (-want +got):\n%s", diff)
	}
	if got.String() != "9091,AA:BB:CC:DD:EE:FF" {
		t.Fatalf("unexpected string: %q", got.String())
	}
}

func TestParseInvalidPort(t *testing.T) {
	for _, spec := range []string{"", "0", "65536", "-1", "abc", "80x", "80-", "-80", "80-abc", "80-70000"} {
		if _, err := Parse(spec); !errors.Is(err, ErrInvalidPort) {
			t.Fatalf("spec %q: expected ErrInvalidPort, got %v", spec, err)
		}
	}
}

func TestParseInvalidMAC(t *testing.T) {
	for _, spec := range []string{
		"9091,",
		"9091,AA:BB:CC:DD:EE",
		"9091,AA:BB:CC:DD:EE:FF:00",
		"9091,AA-BB-CC-DD-EE-FF",
		"9091,AABB.CCDD.EEFF",
		"9091,GG:BB:CC:DD:EE:FF",
		"9091,AA:BB:CC:DD:EE:F",
		"9091,AA:BB:CC:DD:EE:FFF",
		"9091,AAA:B:CC:DD:EE:FF",
		"9091,AA:BB:CC:DD:EE:FF,",
		"0,zz",
	} {
		if _, err := Parse(spec); !errors.Is(err, ErrInvalidMAC) {
			t.Fatalf("spec %q: expected ErrInvalidMAC, got %v", spec, err)
		}
	}
}

func TestMatches(t *testing.T) {
	open := Target{PortStart: 1, PortEnd: 1}
	filtered := Target{PortStart: 1, PortEnd: 1, Sensor: net.HardwareAddr{1, 2, 3, 4, 5, 6}}

	if !open.Matches(nil) || !open.Matches([]byte{9, 9, 9, 9, 9, 9}) {
		t.Fatalf("expected unfiltered target to match everything")
	}
	if filtered.Matches(nil) {
		t.Fatalf("expected filtered target to reject missing sensor")
	}
	if filtered.Matches([]byte{1, 2, 3, 4, 5, 7}) {
		t.Fatalf("expected filtered target to reject other sensor")
	}
	if !filtered.Matches([]byte{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("expected filtered target to match its sensor")
	}
}

func TestPortsCoversRangeWithoutOverflow(t *testing.T) {
	tgt := Target{PortStart: 65533, PortEnd: 65535}
	var got []uint16
	for p := range tgt.Ports() {
		got = append(got, p)
	}
	if diff := cmp.Diff([]uint16{65533, 65534, 65535}, got); diff != "" {
		t.Fatalf("ports mismatch (-want +got):\n%s", diff)
	}

	calls := 0
	for range tgt.Ports() {
		calls++
		break
	}
	if calls != 1 {
		t.Fatalf("expected early stop, got %d calls", calls)
	}
}

func TestParseListReversesAndReportsSpec(t *testing.T) {
	list, err := ParseList([]string{"9091", "9092-9093", "9094,AA:BB:CC:DD:EE:FF"})
	if err != nil {
		t.Fatalf("parse list: %v", err)
	}
	want := []string{"9094,AA:BB:CC:DD:EE:FF", "9092-9093", "9091"}
	if diff := cmp.Diff(want, list.Strings()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if list.Destinations() != 4 {
		t.Fatalf("unexpected destination count: %d", list.Destinations())
	}

	_, err = ParseList([]string{"9091", "9093-9092"})
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Spec != "9093-9092" {
		t.Fatalf("expected ParseError for bad range, got %v", err)
	}
	if !errors.Is(err, ErrInvalidPortRange) {
		t.Fatalf("expected wrapped ErrInvalidPortRange, got %v", err)
	}
	if err.Error() != "target: invalid port range (9093-9092)" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	if _, err := ParseList(nil); !errors.Is(err, ErrNoTargets) {
		t.Fatalf("expected ErrNoTargets, got %v", err)
	}
}
