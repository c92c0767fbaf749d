package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/saeidalz13/battleship-tcp/config"
	"github.com/saeidalz13/battleship-tcp/db/sqlc"
	mb "github.com/saeidalz13/battleship-tcp/models/battleship"
	mc "github.com/saeidalz13/battleship-tcp/models/connection"
)

const (
	WsPath = "/battleship"
)

// Timeouts bound every read and write of a session. A zero value
// keeps the default.
type Timeouts struct {
	Join  time.Duration
	Move  time.Duration
	Write time.Duration
}

type Server struct {
	host   string
	port   int
	wsPort int
	stage  string
	db     *sql.DB

	timeouts Timeouts

	SessionManager mc.SessionManager
	GameManager    mb.GameManager
	rp             *RequestProcessor

	listener   net.Listener
	wsListener net.Listener
	httpServer *http.Server

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	shutdown bool
}

type Option func(*Server) error

func NewServer(optFuncs ...Option) *Server {
	server := Server{
		host:  config.DefaultHost,
		port:  config.DefaultPort,
		stage: config.StageDev,
		timeouts: Timeouts{
			Join:  config.DefaultJoinTimeout,
			Move:  config.DefaultMoveTimeout,
			Write: config.DefaultWriteTimeout,
		},
	}
	for _, opt := range optFuncs {
		if err := opt(&server); err != nil {
			panic(err)
		}
	}

	server.SessionManager = mc.NewBattleshipSessionManager(server.timeouts.Write)
	server.GameManager = mb.NewBattleshipGameManager()

	return &server
}

func WithHost(host string) Option {
	return func(s *Server) error {
		s.host = host
		return nil
	}
}

func WithPort(port int) Option {
	return func(s *Server) error {
		if port < 0 || port > 65535 {
			return fmt.Errorf("invalid port: %d", port)
		}
		s.port = port
		return nil
	}
}

// WithWsPort turns on the websocket listener. Port 0 picks a free one.
func WithWsPort(port int) Option {
	return func(s *Server) error {
		if port < 0 || port > 65535 {
			return fmt.Errorf("invalid websocket port: %d", port)
		}
		s.wsPort = port
		if port == 0 {
			s.wsPort = -1
		}
		return nil
	}
}

func WithStage(stage string) Option {
	return func(s *Server) error {
		if stage != config.StageProd && stage != config.StageDev {
			return fmt.Errorf("invalid type of development stage: %s", stage)
		}
		s.stage = stage
		return nil
	}
}

func WithDb(db *sql.DB) Option {
	return func(s *Server) error {
		s.db = db
		return nil
	}
}

func WithTimeouts(timeouts Timeouts) Option {
	return func(s *Server) error {
		if timeouts.Join < 0 || timeouts.Move < 0 || timeouts.Write < 0 {
			return fmt.Errorf("timeouts cannot be negative: %+v", timeouts)
		}
		if timeouts.Join > 0 {
			s.timeouts.Join = timeouts.Join
		}
		if timeouts.Move > 0 {
			s.timeouts.Move = timeouts.Move
		}
		if timeouts.Write > 0 {
			s.timeouts.Write = timeouts.Write
		}
		return nil
	}
}

// Listen binds the TCP listener, and the websocket listener when
// it is enabled. Serve must be called afterwards.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", net.JoinHostPort(s.host, strconv.Itoa(s.port)))
	if err != nil {
		return err
	}
	s.listener = listener

	if s.wsPort != 0 {
		wsPort := s.wsPort
		if wsPort < 0 {
			wsPort = 0
		}
		wsListener, err := net.Listen("tcp", net.JoinHostPort(s.host, strconv.Itoa(wsPort)))
		if err != nil {
			_ = listener.Close()
			return err
		}
		s.wsListener = wsListener
	}

	var querier sqlc.Querier = sqlc.NoopQuerier{}
	if s.db != nil {
		querier = sqlc.New(s.db)
	}
	dbManager := sqlc.NewDbManager(querier, getServerIpNet(listener.Addr()))

	s.rp = NewRequestProcessor(s.SessionManager, s.GameManager, dbManager.Analytics, s.timeouts)
	return nil
}

func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) WsAddr() net.Addr {
	if s.wsListener == nil {
		return nil
	}
	return s.wsListener.Addr()
}

// Serve accepts connections until Shutdown is called or ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return nil
	}
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.rp.PairSessions(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.SessionManager.CleanupPeriodically(ctx)
	}()

	if s.wsListener != nil {
		mux := http.NewServeMux()
		mux.Handle("GET "+WsPath, s.rp.WsHandler(ctx))
		httpServer := &http.Server{Handler: mux, ReadHeaderTimeout: time.Second * 5}
		s.mu.Lock()
		s.httpServer = httpServer
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			log.Printf("websocket listening on %s\n", s.wsListener.Addr())
			if err := httpServer.Serve(s.wsListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Println("websocket server stopped:", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	log.Printf("listening on %s (stage: %s)\n", s.listener.Addr(), s.stage)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return err
		}

		log.Println("a new connection established\tRemote Addr:", conn.RemoteAddr().String())
		s.rp.HandleConn(ctx, conn)
	}
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Shutdown closes the listeners and every live session, then waits for
// the running games to unwind or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return nil
	}
	s.shutdown = true
	cancel := s.cancel
	httpServer := s.httpServer
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if httpServer != nil {
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Println("websocket server shutdown:", err)
		}
	} else if s.wsListener != nil {
		_ = s.wsListener.Close()
	}
	s.SessionManager.TerminateAll()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		if s.rp != nil {
			s.rp.Wait()
		}
		close(done)
	}()

	select {
	case <-done:
		log.Println("server shut down")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// getServerIpNet is the key of the analytics rows. An unspecified bind
// address falls back to the first non loopback interface address.
func getServerIpNet(addr net.Addr) net.IPNet {
	var ip net.IP
	if tcpAddr, ok := addr.(*net.TCPAddr); ok {
		ip = tcpAddr.IP
	}

	if ip == nil || ip.IsUnspecified() {
		ip = firstInterfaceIp()
	}
	if ip4 := ip.To4(); ip4 != nil {
		return net.IPNet{IP: ip4, Mask: net.CIDRMask(32, 32)}
	}
	return net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}
}

func firstInterfaceIp() net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		log.Println("failed to list interfaces:", err)
		return net.IPv4(127, 0, 0, 1)
	}

	for _, iface := range ifaces {
		// If the flag is down
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip != nil && ip.To4() != nil && !ip.IsLoopback() {
				return ip
			}
		}
	}
	return net.IPv4(127, 0, 0, 1)
}
