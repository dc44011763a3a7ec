package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/adamgarcia4/goLearning/standby/failover"
)

// MaxDatagramSize is the largest liveness datagram accepted.
const MaxDatagramSize = failover.MaxSignalSize

// LivenessClient sends liveness signals to the monitor, one UDP datagram each.
type LivenessClient struct {
	addr *net.UDPAddr
	conn *net.UDPConn
}

var _ failover.SignalSender = (*LivenessClient)(nil)

// NewLivenessClient resolves addr once and opens a connected UDP socket to it.
func NewLivenessClient(addr string) (*LivenessClient, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidAddress, addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial monitor %s: %w", raddr, err)
	}
	return &LivenessClient{addr: raddr, conn: conn}, nil
}

// SendSignal writes s as a single datagram. Delivery is not acknowledged.
func (c *LivenessClient) SendSignal(s failover.Signal) error {
	if _, err := c.conn.Write(s.Bytes()); err != nil {
		return fmt.Errorf("send %s to %s: %w", s, c.addr, err)
	}
	return nil
}

// Close releases the socket.
func (c *LivenessClient) Close() error {
	return c.conn.Close()
}

// DatagramHandler processes one received datagram. Its error is not acted on;
// the handler is expected to log what it discards.
type DatagramHandler func(ctx context.Context, payload []byte) error

// LivenessListener receives liveness datagrams for the monitor.
type LivenessListener struct {
	conn   *net.UDPConn
	logger failover.Logger

	closeOnce sync.Once
}

// ListenLiveness binds addr. A bind failure is returned wrapped in ErrBind
// and is fatal for the monitor.
func ListenLiveness(addr string, opts ...Option) (*LivenessListener, error) {
	o := buildOptions(opts)

	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidAddress, addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("%w to failover address %s: %v", ErrBind, addr, err)
	}
	return &LivenessListener{conn: conn, logger: o.logger}, nil
}

// Addr returns the bound address.
func (l *LivenessListener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Serve passes every datagram to handle until ctx is cancelled or the
// listener is closed. Handlers run on the receive goroutine, in arrival order.
// The read buffer holds one byte more than MaxDatagramSize, so an oversized
// datagram reaches handle longer than the limit and is rejected by the parser
// instead of being cut down to a valid-looking prefix.
func (l *LivenessListener) Serve(ctx context.Context, handle DatagramHandler) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = l.Close()
		case <-stop:
		}
	}()

	l.logger.Infof("listening for liveness signals on %s", l.Addr())

	buf := make([]byte, MaxDatagramSize+1)
	for {
		n, from, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("receive liveness: %w", err)
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		l.logger.Debugf("datagram from %s: %q", from, payload)
		_ = handle(ctx, payload)
	}
}

// Close stops Serve.
func (l *LivenessListener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		err = l.conn.Close()
	})
	return err
}
