// Package transport owns the input and output UDP sockets used by the relay.
//
// Platform differences (interrupted receive classification) live in per-OS
// files; callers only see Transport.
package transport

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"
)

// MaxDatagramSize bounds one receive; longer datagrams are truncated by the OS.
const MaxDatagramSize = 65536

// Transport is the socket pair owned by the dispatcher.
type Transport interface {
	// Receive blocks for one datagram.
	Receive(buf []byte) (int, netip.AddrPort, error)
	// Send writes b to the loopback address at port.
	Send(b []byte, port uint16) error
	Close() error
}

// Config describes how the sockets are created and bound.
type Config struct {
	// InputPort is bound on every IPv4 interface. Zero picks an ephemeral port.
	InputPort uint16
	// Loopback is the relay destination address. Zero value means 127.0.0.1.
	Loopback netip.Addr
	// ReadBuffer sets SO_RCVBUF on the input socket when positive.
	ReadBuffer int
}

// UDP implements Transport over two IPv4 UDP sockets.
type UDP struct {
	in       *net.UDPConn
	out      *net.UDPConn
	loopback netip.Addr

	closeOnce sync.Once
	closeErr  error
}

var _ Transport = (*UDP)(nil)

// Open creates both sockets and binds the input socket.
func Open(cfg Config) (*UDP, error) {
	loopback := cfg.Loopback
	if !loopback.IsValid() {
		loopback = netip.AddrFrom4([4]byte{127, 0, 0, 1})
	}

	in, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: int(cfg.InputPort)})
	if err != nil {
		return nil, fmt.Errorf("transport: bind input port %d: %w", cfg.InputPort, err)
	}
	if cfg.ReadBuffer > 0 {
		if err := in.SetReadBuffer(cfg.ReadBuffer); err != nil {
			_ = in.Close()
			return nil, fmt.Errorf("transport: set read buffer: %w", err)
		}
	}

	out, err := net.ListenUDP("udp4", nil)
	if err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("transport: create output socket: %w", err)
	}

	return &UDP{in: in, out: out, loopback: loopback}, nil
}

func (u *UDP) Receive(buf []byte) (int, netip.AddrPort, error) {
	return u.in.ReadFromUDPAddrPort(buf)
}

func (u *UDP) Send(b []byte, port uint16) error {
	_, err := u.out.WriteToUDPAddrPort(b, netip.AddrPortFrom(u.loopback, port))
	return err
}

// InputAddr is the bound input address, useful when InputPort was zero.
func (u *UDP) InputAddr() netip.AddrPort {
	return u.in.LocalAddr().(*net.UDPAddr).AddrPort()
}

// Close releases both sockets. It is safe to call more than once and unblocks a
// pending Receive.
func (u *UDP) Close() error {
	u.closeOnce.Do(func() {
		u.closeErr = errors.Join(u.in.Close(), u.out.Close())
	})
	return u.closeErr
}

// IsClosed reports a receive failure caused by Close.
func IsClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

// IsInterrupted reports a transient receive failure that should be retried.
func IsInterrupted(err error) bool {
	return err != nil && isInterrupted(err)
}
