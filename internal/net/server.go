package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"fenrir/internal/registry"
	"fenrir/internal/utils"
)

const (
	maxRecvSize        = 4 * 1024
	defaultNWorkers    = 10
	defaultConnTimeout = 30 * time.Second
)

var (
	ErrImproperConversion = errors.New("improper type conversion")
	ErrClientDoesNotExist = errors.New("client does not exist")
)

// ClientSession tracks one connected TCP session, addressed by the
// client's remote address (not the server's own listening address:
// every connection shares that one).
type ClientSession struct {
	conn net.Conn
}

// ClientMessage links a parsed message to the client that sent it.
type ClientMessage struct {
	clientAddress string
	message       Message
}

// Server is the TCP front end over a registry.Registry: it parses the
// wire protocol, forwards requests to the matching books, and writes
// execution/error reports back to the originating connection.
type Server struct {
	address string
	port    int

	registry *registry.Registry
	pool     utils.WorkerPool

	cancel             context.CancelFunc
	clientSessions     map[string]ClientSession
	clientSessionsLock sync.Mutex
	clientMessages     chan ClientMessage
}

func New(address string, port int, reg *registry.Registry, workers int) *Server {
	if workers <= 0 {
		workers = defaultNWorkers
	}
	return &Server{
		address:        address,
		port:           port,
		registry:       reg,
		pool:           utils.NewWorkerPool(workers),
		clientSessions: make(map[string]ClientSession),
		clientMessages: make(chan ClientMessage, 1),
	}
}

func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})

	t.Go(func() error {
		return s.sessionHandler(t)
	})

	log.Info().Str("address", s.address).Int("port", s.port).Msg("server running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("error accepting client")
				continue
			}

			log.Info().Str("address", conn.RemoteAddr().String()).Msg("new client connected")
			s.addClientSession(conn)
			s.pool.AddTask(conn)
		}
	}
}

// reportTo serializes a Report and writes it to the client at address,
// dropping the session on write failure.
func (s *Server) reportTo(address string, r Report) error {
	s.clientSessionsLock.Lock()
	client, ok := s.clientSessions[address]
	s.clientSessionsLock.Unlock()
	if !ok {
		return ErrClientDoesNotExist
	}

	if _, err := client.conn.Write(r.Serialize()); err != nil {
		s.deleteClientSession(address)
		return fmt.Errorf("unable to send report: %w", err)
	}
	return nil
}

func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case message := <-s.clientMessages:
			if err := s.handleMessage(message); err != nil {
				log.Error().
					Err(err).
					Str("clientAddress", message.clientAddress).
					Msg("error handling message")
			}
		}
	}
}

func (s *Server) handleMessage(message ClientMessage) error {
	switch message.message.GetType() {
	case NewOrder:
		return s.handleNewOrder(message)
	case CancelOrder:
		return s.handleCancelOrder(message)
	default:
		log.Error().
			Int("messageType", int(message.message.GetType())).
			Msg("invalid message type")
		return ErrInvalidMessageType
	}
}

func (s *Server) handleNewOrder(message ClientMessage) error {
	order, ok := message.message.(NewOrderMessage)
	if !ok {
		return ErrImproperConversion
	}

	req, err := order.Request()
	if err != nil {
		return s.reportTo(message.clientAddress, errorReport(order.Pair, err))
	}

	_, trades, err := s.registry.Place(order.Pair, req)
	if err != nil {
		return s.reportTo(message.clientAddress, errorReport(order.Pair, err))
	}

	for _, trade := range trades {
		if err := s.reportTo(message.clientAddress, executionReport(order.Pair, trade, req.Side, trade.TakerID, trade.MakerID)); err != nil {
			log.Error().Err(err).Msg("error sending execution report")
		}
	}
	return nil
}

func (s *Server) handleCancelOrder(message ClientMessage) error {
	order, ok := message.message.(CancelOrderMessage)
	if !ok {
		return ErrImproperConversion
	}

	var err error
	if order.Partial {
		_, _, err = s.registry.CancelPartial(order.Pair, order.OrderUUID, order.PartialQty)
	} else {
		_, _, err = s.registry.Cancel(order.Pair, order.OrderUUID)
	}
	if err != nil {
		return s.reportTo(message.clientAddress, errorReport(order.Pair, err))
	}
	return nil
}

// handleConnection reads exactly one message off conn, hands it to the
// session handler, then re-queues the connection for its next message.
// Any error returned here is fatal to the worker (not the connection).
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	if err := conn.SetDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().Str("address", conn.RemoteAddr().String()).Err(err).Msg("failed setting deadline")
		s.closeConn(conn)
		return nil
	}

	buffer := make([]byte, maxRecvSize)
	select {
	case <-t.Dying():
		return nil
	default:
		n, err := conn.Read(buffer)
		if err != nil {
			log.Info().Str("address", conn.RemoteAddr().String()).Err(err).Msg("connection closed")
			s.deleteClientSession(conn.RemoteAddr().String())
			s.closeConn(conn)
			return nil
		}

		message, err := parseMessage(buffer[:n])
		if err != nil {
			log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error parsing message")
			s.pool.AddTask(conn)
			return nil
		}

		s.clientMessages <- ClientMessage{
			message:       message,
			clientAddress: conn.RemoteAddr().String(),
		}
		s.pool.AddTask(conn)
	}
	return nil
}

func (s *Server) closeConn(conn net.Conn) {
	if err := conn.Close(); err != nil {
		log.Error().Str("address", conn.RemoteAddr().String()).Err(err).Msg("error closing connection")
	}
}

func (s *Server) addClientSession(conn net.Conn) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()
	s.clientSessions[conn.RemoteAddr().String()] = ClientSession{conn: conn}
}

func (s *Server) deleteClientSession(address string) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()
	delete(s.clientSessions, address)
}
