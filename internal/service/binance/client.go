package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"GapSight/internal/domain/models"
	drepo "GapSight/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a MarketStream backed by the Binance combined
// kline stream. Only closed klines are forwarded.
type Client struct {
	websocketURL   string
	symbols        []string
	interval       string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	// mu guards conn and connected; Close and Reconnect race the
	// ping/read goroutines otherwise.
	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
}

// New creates a new Binance MarketStream.
func New(websocketURL string, symbols []string, interval string, reconnectDelay, pingInterval time.Duration) drepo.MarketStream {
	return &Client{
		websocketURL:   websocketURL,
		symbols:        symbols,
		interval:       interval,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the combined-stream WebSocket connection.
// Binance carries the subscriptions in the URL, so Subscribe is a no-op
// kept for interface symmetry.
func (c *Client) Connect(ctx context.Context) error {
	streams := make([]string, 0, len(c.symbols))
	for _, s := range c.symbols {
		streams = append(streams, fmt.Sprintf("%s@kline_%s", strings.ToLower(s), c.interval))
	}
	u := fmt.Sprintf("%s/stream?streams=%s", c.websocketURL, strings.Join(streams, "/"))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	log.Printf("binance: connected streams=%d interval=%s", len(streams), c.interval)
	return nil
}

// current snapshots the live connection for the ping/read goroutines.
func (c *Client) current() *websocket.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

// Subscribe is a no-op: the combined stream URL already names the streams.
func (c *Client) Subscribe(ctx context.Context) error {
	if !c.IsConnected() {
		return fmt.Errorf("binance not connected")
	}
	return nil
}

type bnKline struct {
	Start  int64  `json:"t"` // ms
	Symbol string `json:"s"`
	Open   string `json:"o"`
	High   string `json:"h"`
	Low    string `json:"l"`
	Close  string `json:"c"`
	Volume string `json:"v"`
	Closed bool   `json:"x"`
}

type bnEvent struct {
	Type  string  `json:"e"`
	Kline bnKline `json:"k"`
}

type bnFrame struct {
	Stream string  `json:"stream"`
	Data   bnEvent `json:"data"`
}

// Read streams closed candles and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.Candle, <-chan error) {
	candles := make(chan *models.Candle, 256)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if conn := c.current(); conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(candles)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				conn := c.current()
				if conn == nil {
					errs <- fmt.Errorf("binance conn nil")
					return
				}
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("binance read: %w", err)
					return
				}
				var f bnFrame
				if err := json.Unmarshal(b, &f); err != nil || f.Data.Type != "kline" {
					continue
				}
				k := f.Data.Kline
				if !k.Closed {
					continue
				}
				candle, err := parseKline(k)
				if err != nil {
					log.Printf("binance: bad kline for %s: %v", k.Symbol, err)
					continue
				}
				select {
				case candles <- candle:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return candles, errs
}

func parseKline(k bnKline) (*models.Candle, error) {
	o, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	h, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return nil, fmt.Errorf("high: %w", err)
	}
	l, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return nil, fmt.Errorf("low: %w", err)
	}
	cl, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("close: %w", err)
	}
	v, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return nil, fmt.Errorf("volume: %w", err)
	}
	return &models.Candle{
		Symbol:    strings.ToUpper(k.Symbol),
		Timestamp: time.UnixMilli(k.Start).UTC(),
		Open:      o,
		High:      h,
		Low:       l,
		Close:     cl,
		Volume:    v,
	}, nil
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.mu.Lock()
	c.connected = false
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
