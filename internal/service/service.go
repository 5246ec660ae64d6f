// Package service runs the relay lifecycle: sockets, dispatcher and the
// optional admin server.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os/signal"
	"syscall"

	"github.com/danmuck/tzspd/internal/admin"
	"github.com/danmuck/tzspd/internal/config"
	"github.com/danmuck/tzspd/internal/dispatch"
	"github.com/danmuck/tzspd/internal/target"
	"github.com/danmuck/tzspd/internal/transport"
	"github.com/danmuck/tzspd/internal/tzsp"
	"github.com/danmuck/tzspd/internal/wlan"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var ErrNotOpen = errors.New("service: not open")

// Service owns one relay instance.
type Service struct {
	cfg      config.Config
	version  string
	relay    dispatch.Config
	trCfg    transport.Config
	tr       *transport.UDP
	disp     *dispatch.Dispatcher
	adminSrv *admin.Server
}

// New validates cfg and prepares the relay without touching the network.
func New(cfg config.Config, version string) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	targets, err := target.ParseList(cfg.Targets)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:     cfg,
		version: version,
		relay: dispatch.Config{
			Targets: targets,
			Filter: wlan.Filter{
				DiscardManagement: cfg.Discard.Management,
				DiscardControl:    cfg.Discard.Control,
				DiscardData:       cfg.Discard.Data,
				DiscardExtension:  cfg.Discard.Extension,
				BeaconOnly:        cfg.BeaconOnly,
			},
			Decoder: tzsp.Decoder{AllowFCSErrors: cfg.AllowFCSErrors},
		},
		trCfg: transport.Config{
			InputPort:  uint16(cfg.InputPort),
			ReadBuffer: cfg.ReadBuffer,
		},
	}, nil
}

// Run blocks until SIGINT or SIGTERM, or until the relay fails.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := s.Open(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Open binds the sockets and builds the dispatcher.
func (s *Service) Open() error {
	log.Info().
		Str("version", s.version).
		Uint16("port", s.trCfg.InputPort).
		Msg("service.Service.Open starting")

	tr, err := transport.Open(s.trCfg)
	if err != nil {
		return err
	}
	disp, err := dispatch.New(tr, s.relay)
	if err != nil {
		_ = tr.Close()
		return err
	}
	s.tr = tr
	s.disp = disp
	if s.cfg.Admin.ListenAddr != "" {
		s.adminSrv = admin.New(s.cfg.Admin.ListenAddr, s.cfg.Admin.CORSOrigins, s.version, disp)
	}
	for _, t := range s.relay.Targets {
		log.Debug().Str("target", t.String()).Msg("service.Service.Open target")
	}
	return nil
}

// InputAddr reports the bound input address once open.
func (s *Service) InputAddr() netip.AddrPort {
	if s.tr == nil {
		return netip.AddrPort{}
	}
	return s.tr.InputAddr()
}

// Dispatcher is nil until Open succeeds.
func (s *Service) Dispatcher() *dispatch.Dispatcher {
	return s.disp
}

// Serve runs the dispatcher and admin server until ctx is done or either
// fails. The sockets are closed on return.
func (s *Service) Serve(ctx context.Context) error {
	if s.disp == nil {
		return ErrNotOpen
	}
	defer s.tr.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return s.disp.Run(gctx)
	})
	if s.adminSrv != nil {
		g.Go(func() error {
			return s.adminSrv.Serve(gctx)
		})
	}

	err := g.Wait()
	st := s.disp.Stats()
	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Uint64("received", st.Received).
		Uint64("relayed", st.Relayed).
		Uint64("dropped", st.Dropped).
		Msg("service.Service.Serve stopped")
	if err != nil {
		return fmt.Errorf("service: %w", err)
	}
	return nil
}
