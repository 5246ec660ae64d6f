package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/danmuck/tzspd/internal/tzsp"
	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var ErrUnknownSample = errors.New("tzspsend: unknown sample frame")

type options struct {
	addr     string
	sample   string
	frameHex string
	sensor   string
	channel  uint8
	fcsError bool
	count    int
	interval time.Duration
	dump     bool
}

func newRootCmd(name string) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           name,
		Short:         "Send TZSP encapsulated 802.11 frames",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dg, err := buildDatagram(opts)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			if opts.dump {
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(dg))
				return nil
			}
			return send(opts, dg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.addr, "addr", "127.0.0.1:37008", "destination host:port")
	flags.StringVar(&opts.sample, "sample", "beacon", "built-in frame: beacon, probe-response, nv2, data, control")
	flags.StringVar(&opts.frameHex, "frame", "", "raw 802.11 frame as hex, overrides --sample")
	flags.StringVar(&opts.sensor, "sensor", "", "sensor MAC tag, e.g. AA:BB:CC:DD:EE:FF")
	flags.Uint8Var(&opts.channel, "channel", 0, "channel tag (0 omits it)")
	flags.BoolVar(&opts.fcsError, "fcs-error", false, "flag the frame with a failed FCS")
	flags.IntVar(&opts.count, "count", 1, "number of datagrams to send")
	flags.DurationVar(&opts.interval, "interval", 100*time.Millisecond, "delay between datagrams")
	flags.BoolVar(&opts.dump, "dump", false, "print the datagram as hex instead of sending")
	return cmd
}

func buildDatagram(opts options) ([]byte, error) {
	var frame []byte
	if opts.frameHex != "" {
		raw, err := hex.DecodeString(strings.ReplaceAll(opts.frameHex, ":", ""))
		if err != nil {
			return nil, fmt.Errorf("tzspsend: decode frame: %w", err)
		}
		frame = raw
	} else {
		f, err := sampleFrame(opts.sample)
		if err != nil {
			return nil, err
		}
		frame = f
	}

	var tags []tzsp.Tag
	if opts.sensor != "" {
		mac, err := net.ParseMAC(opts.sensor)
		if err != nil || len(mac) != 6 {
			return nil, fmt.Errorf("tzspsend: invalid sensor MAC (%s)", opts.sensor)
		}
		tags = append(tags, tzsp.SensorTag(mac))
	}
	if opts.channel != 0 {
		tags = append(tags, tzsp.ChannelTag(opts.channel))
	}
	if opts.fcsError {
		tags = append(tags, tzsp.FCSTag(true))
	}
	return tzsp.Encode(frame, tags...)
}

func send(opts options, dg []byte) error {
	conn, err := net.Dial("udp", opts.addr)
	if err != nil {
		return fmt.Errorf("tzspsend: dial %s: %w", opts.addr, err)
	}
	defer conn.Close()

	for i := 0; i < opts.count; i++ {
		if i > 0 && opts.interval > 0 {
			time.Sleep(opts.interval)
		}
		if _, err := conn.Write(dg); err != nil {
			return fmt.Errorf("tzspsend: write: %w", err)
		}
	}
	log.Info().
		Str("addr", opts.addr).
		Int("count", opts.count).
		Int("bytes", len(dg)).
		Msg("tzspsend sent")
	return nil
}

var (
	bssid     = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	station   = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}
	broadcast = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
)

const (
	sampleSSID     = "tzspd"
	beaconInterval = 100
	capabilityESS  = 0x0001
)

// sampleFrame builds a minimal frame of the named kind without an FCS.
func sampleFrame(kind string) ([]byte, error) {
	ssid := layers.Dot11InformationElement{
		ID:   layers.Dot11InformationElementIDSSID,
		Info: []byte(sampleSSID),
	}
	switch kind {
	case "beacon":
		return serialize(
			header(layers.Dot11TypeMgmtBeacon, broadcast, 0),
			&layers.Dot11MgmtBeacon{Interval: beaconInterval, Flags: capabilityESS},
			&ssid,
		)
	case "probe-response":
		return serialize(
			header(layers.Dot11TypeMgmtProbeResp, station, 0),
			&layers.Dot11MgmtProbeResp{Interval: beaconInterval, Flags: capabilityESS},
			&ssid,
		)
	case "nv2":
		return serialize(header(layers.Dot11TypeData, broadcast, layers.Dot11FlagsPowerManagement|layers.Dot11FlagsOrder))
	case "data":
		// LLC/SNAP header announcing IPv4
		return serialize(
			header(layers.Dot11TypeData, station, 0),
			gopacket.Payload{0xaa, 0xaa, 0x03, 0x00, 0x00, 0x00, 0x08, 0x00},
		)
	case "control":
		return serialize(header(layers.Dot11TypeCtrlAck, station, 0))
	default:
		return nil, fmt.Errorf("%w (%s)", ErrUnknownSample, kind)
	}
}

func header(t layers.Dot11Type, dst net.HardwareAddr, flags layers.Dot11Flags) *layers.Dot11 {
	return &layers.Dot11{
		Type:     t,
		Flags:    flags,
		Address1: dst,
		Address2: bssid,
		Address3: bssid,
	}
}

func serialize(ls ...gopacket.SerializableLayer) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, ls...); err != nil {
		return nil, fmt.Errorf("tzspsend: serialize frame: %w", err)
	}
	return buf.Bytes(), nil
}
