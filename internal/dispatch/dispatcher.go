package dispatch

import (
	"context"
	"net"
	"sync/atomic"

	"github.com/danmuck/tzspd/internal/observability"
	"github.com/danmuck/tzspd/internal/target"
	"github.com/danmuck/tzspd/internal/transport"
	"github.com/danmuck/tzspd/internal/tzsp"
	"github.com/danmuck/tzspd/internal/wlan"
	"github.com/rs/zerolog/log"
)

// Drop reasons outside the wlan verdicts. DropNoTarget covers frames that
// passed the filter but matched no target rule.
const (
	DropEmpty    = "empty"
	DropDecode   = "decode"
	DropNoTarget = "no_target"
)

// Config is the immutable relay configuration.
type Config struct {
	Targets target.List
	Filter  wlan.Filter
	Decoder tzsp.Decoder
}

// Stats is a snapshot of relay counters. Every received datagram is either
// dropped or relayed to at least one destination.
type Stats struct {
	Received   uint64 `json:"received"`
	Dropped    uint64 `json:"dropped"`
	Relayed    uint64 `json:"relayed"`
	Sends      uint64 `json:"sends"`
	SendErrors uint64 `json:"send_errors"`
}

// Dispatcher receives, filters and fans out datagrams.
type Dispatcher struct {
	tr      transport.Transport
	cfg     Config
	metrics *observability.RelayRecorder
	buf     []byte

	received   atomic.Uint64
	dropped    atomic.Uint64
	relayed    atomic.Uint64
	sends      atomic.Uint64
	sendErrors atomic.Uint64
}

func New(tr transport.Transport, cfg Config) (*Dispatcher, error) {
	if len(cfg.Targets) == 0 {
		return nil, target.ErrNoTargets
	}
	return &Dispatcher{
		tr:  tr,
		cfg: cfg,
		metrics: observability.NewRelayRecorder(
			DropEmpty,
			DropDecode,
			DropNoTarget,
			string(wlan.VerdictShort),
			string(wlan.VerdictManagement),
			string(wlan.VerdictControl),
			string(wlan.VerdictData),
			string(wlan.VerdictExtension),
			string(wlan.VerdictNotBeacon),
		),
		buf: make([]byte, transport.MaxDatagramSize),
	}, nil
}

// Run blocks receiving datagrams until the transport is closed or a receive
// fails for a reason other than an interrupt. A failed receive is logged and
// ends the loop like a close. Cancelling ctx closes the transport.
func (d *Dispatcher) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = d.tr.Close()
	})
	defer stop()

	log.Info().
		Int("targets", len(d.cfg.Targets)).
		Int("destinations", d.cfg.Targets.Destinations()).
		Msg("dispatch.Dispatcher.Run started")

	for {
		n, _, err := d.tr.Receive(d.buf)
		if err != nil {
			if transport.IsInterrupted(err) {
				continue
			}
			if transport.IsClosed(err) {
				log.Info().Msg("dispatch.Dispatcher.Run stopped")
				return nil
			}
			log.Error().Err(err).Msg("dispatch.Dispatcher.Run receive failed, stopping")
			return nil
		}
		d.Handle(d.buf[:n])
	}
}

// Handle processes one received datagram and returns the number of successful
// sends. datagram is not retained.
func (d *Dispatcher) Handle(datagram []byte) int {
	d.received.Add(1)
	d.metrics.Received()

	if len(datagram) == 0 {
		d.drop(DropEmpty)
		return 0
	}

	env, err := d.cfg.Decoder.Decode(datagram)
	if err != nil {
		d.drop(DropDecode)
		return 0
	}
	if v := d.cfg.Filter.Check(env.Payload); v != wlan.VerdictPass {
		d.drop(string(v))
		return 0
	}

	attempted, sent := d.fanOut(datagram, env.Sensor)
	if attempted == 0 {
		d.drop(DropNoTarget)
		return 0
	}
	d.relayed.Add(1)
	d.metrics.Relayed()
	return sent
}

// fanOut sends the undecoded datagram and reports attempted and successful
// sends. sensor aliases datagram and dies with this call.
func (d *Dispatcher) fanOut(datagram []byte, sensor net.HardwareAddr) (attempted, sent int) {
	for _, t := range d.cfg.Targets {
		if !t.Matches(sensor) {
			continue
		}
		for port := range t.Ports() {
			attempted++
			d.sends.Add(1)
			if err := d.tr.Send(datagram, port); err != nil {
				d.sendErrors.Add(1)
				d.metrics.Sent(false)
				continue
			}
			d.metrics.Sent(true)
			sent++
		}
	}
	return attempted, sent
}

func (d *Dispatcher) drop(reason string) {
	d.dropped.Add(1)
	d.metrics.Dropped(reason)
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Received:   d.received.Load(),
		Dropped:    d.dropped.Load(),
		Relayed:    d.relayed.Load(),
		Sends:      d.sends.Load(),
		SendErrors: d.sendErrors.Load(),
	}
}

func (d *Dispatcher) Targets() target.List {
	return d.cfg.Targets
}
