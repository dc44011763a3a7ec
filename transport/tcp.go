package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/adamgarcia4/goLearning/standby/failover"
)

const (
	// DefaultDialTimeout bounds one connection attempt to the sink.
	DefaultDialTimeout = 2 * time.Second

	readTimeout = 10 * time.Second
)

// RecordClient delivers records to the sink. Every record gets its own TCP
// connection; the payload is the whole stream.
type RecordClient struct {
	addr        *net.TCPAddr
	dialTimeout time.Duration
}

var _ failover.RecordSender = (*RecordClient)(nil)

// NewRecordClient resolves addr once. An unresolvable address is an error.
func NewRecordClient(addr string, dialTimeout time.Duration) (*RecordClient, error) {
	raddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidAddress, addr, err)
	}
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	return &RecordClient{addr: raddr, dialTimeout: dialTimeout}, nil
}

// SendRecord connects, writes r and closes the connection.
// There is no acknowledgement from the sink.
func (c *RecordClient) SendRecord(ctx context.Context, r failover.Record) error {
	payload, err := failover.EncodeRecord(r)
	if err != nil {
		return err
	}

	d := net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr.String())
	if err != nil {
		return fmt.Errorf("connect to receiver %s: %w", c.addr, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(c.dialTimeout))
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("write record %d to %s: %w", r.Count, c.addr, err)
	}
	return nil
}

// RecordHandler receives each decoded record.
type RecordHandler func(r failover.Record)

// RecordServer accepts record connections for the sink.
type RecordServer struct {
	lis    net.Listener
	logger failover.Logger

	closeOnce sync.Once
}

// ListenRecords binds addr for incoming records.
func ListenRecords(addr string, opts ...Option) (*RecordServer, error) {
	o := buildOptions(opts)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w to receiver address %s: %v", ErrBind, addr, err)
	}
	return &RecordServer{lis: lis, logger: o.logger}, nil
}

// Addr returns the bound address.
func (s *RecordServer) Addr() net.Addr {
	return s.lis.Addr()
}

// Serve accepts connections until ctx is cancelled, decoding exactly one
// record per connection. Undecodable payloads are logged and dropped.
func (s *RecordServer) Serve(ctx context.Context, handle RecordHandler) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-stop:
		}
	}()

	s.logger.Infof("accepting records on %s", s.Addr())

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := s.lis.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept record connection: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConn(conn, handle)
		}()
	}
}

func (s *RecordServer) handleConn(conn net.Conn, handle RecordHandler) {
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	rec, err := failover.DecodeRecord(conn)
	if err != nil {
		s.logger.Warnf("dropping payload from %s: %v", conn.RemoteAddr(), err)
		return
	}
	handle(rec)
}

// Close stops Serve.
func (s *RecordServer) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.lis.Close()
	})
	return err
}
