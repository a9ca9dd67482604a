package binance

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/binance-dashboard/internal/exchange"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	pingInterval         = 30 * time.Second
	reconnectDelay       = 5 * time.Second
	maxReconnectAttempts = 10
	markPriceStream      = "@markPrice@1s"
)

// markPriceEvent is a markPriceUpdate stream payload
type markPriceEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	MarkPrice string `json:"p"`
}

// Stream subscribes to futures mark prices over WebSocket
type Stream struct {
	wsURL       string
	conn        *websocket.Conn
	connMux     sync.RWMutex
	isConnected bool

	subscriber exchange.PriceSubscriber
	subMux     sync.RWMutex

	subscribed    map[string]bool
	subscribedMux sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	reconnectAttempts int
}

// NewStream creates a mark price stream for the given WebSocket endpoint
func NewStream(wsURL string) *Stream {
	return &Stream{
		wsURL:      wsURL,
		subscribed: make(map[string]bool),
	}
}

// IsConnected returns whether the WebSocket is connected
func (s *Stream) IsConnected() bool {
	s.connMux.RLock()
	defer s.connMux.RUnlock()
	return s.isConnected
}

// Connect establishes the WebSocket connection and starts the read and ping
// loops. They stop when ctx is cancelled or Close is called.
func (s *Stream) Connect(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if err := s.connect(); err != nil {
		return err
	}

	s.wg.Add(2)
	go s.messageLoop()
	go s.pingLoop()

	return nil
}

func (s *Stream) connect() error {
	s.connMux.Lock()
	defer s.connMux.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(s.ctx, s.wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to Binance WebSocket: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.reconnectAttempts = 0

	log.Printf("[Binance] WebSocket connected")

	// Resubscribe after reconnect
	s.subscribedMux.RLock()
	symbols := make([]string, 0, len(s.subscribed))
	for symbol := range s.subscribed {
		symbols = append(symbols, symbol)
	}
	s.subscribedMux.RUnlock()

	if len(symbols) > 0 {
		go s.subscribe(symbols)
	}

	return nil
}

// Subscribe subscribes to mark price updates for given symbols
func (s *Stream) Subscribe(symbols []string) error {
	s.subscribedMux.Lock()
	for _, symbol := range symbols {
		s.subscribed[strings.ToUpper(symbol)] = true
	}
	s.subscribedMux.Unlock()

	return s.subscribe(symbols)
}

func (s *Stream) subscribe(symbols []string) error {
	if !s.IsConnected() {
		return fmt.Errorf("not connected")
	}

	streams := make([]string, len(symbols))
	for i, symbol := range symbols {
		streams[i] = strings.ToLower(symbol) + markPriceStream
	}

	msg := map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": streams,
		"id":     time.Now().UnixNano(),
	}

	s.connMux.Lock()
	err := s.conn.WriteJSON(msg)
	s.connMux.Unlock()

	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	log.Printf("[Binance] Subscribed to %d mark price streams", len(symbols))
	return nil
}

// SetSubscriber sets the price update subscriber
func (s *Stream) SetSubscriber(subscriber exchange.PriceSubscriber) {
	s.subMux.Lock()
	defer s.subMux.Unlock()
	s.subscriber = subscriber
}

func (s *Stream) messageLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		s.connMux.RLock()
		conn := s.conn
		s.connMux.RUnlock()

		if conn == nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Binance] WebSocket error: %v", err)
			}
			s.handleDisconnect()
			continue
		}

		s.handleMessage(message)
	}
}

func (s *Stream) handleMessage(message []byte) {
	var event markPriceEvent
	if err := json.Unmarshal(message, &event); err != nil || event.EventType != "markPriceUpdate" {
		return
	}

	price, err := strconv.ParseFloat(event.MarkPrice, 64)
	if err != nil {
		return
	}

	update := exchange.PriceUpdate{
		Exchange:  "binance",
		Symbol:    event.Symbol,
		Price:     price,
		Timestamp: event.EventTime,
	}

	s.subMux.RLock()
	subscriber := s.subscriber
	s.subMux.RUnlock()

	if subscriber != nil {
		subscriber.OnPriceUpdate(update)
	}
}

func (s *Stream) handleDisconnect() {
	s.connMux.Lock()
	s.isConnected = false
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connMux.Unlock()

	for s.reconnectAttempts < maxReconnectAttempts {
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}

		s.reconnectAttempts++
		log.Printf("[Binance] Attempting reconnect %d/%d", s.reconnectAttempts, maxReconnectAttempts)

		if err := s.connect(); err != nil {
			log.Printf("[Binance] Reconnect failed: %v", err)
			continue
		}

		return
	}

	log.Printf("[Binance] Max reconnect attempts reached, giving up on mark prices")
	s.cancel()
}

func (s *Stream) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.connMux.Lock()
			conn := s.conn
			var err error
			if s.isConnected && conn != nil {
				err = conn.WriteControl(websocket.PongMessage, nil, time.Now().Add(5*time.Second))
			}
			s.connMux.Unlock()

			if err != nil {
				log.Printf("[Binance] Ping failed: %v", err)
			}
		}
	}
}

// Close closes the WebSocket connection and waits for the loops to exit
func (s *Stream) Close() error {
	if s.cancel != nil {
		s.cancel()
	}

	s.connMux.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.isConnected = false
	s.connMux.Unlock()

	s.wg.Wait()

	log.Printf("[Binance] WebSocket closed")
	return nil
}
