package binance

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestParseKline(t *testing.T) {
	k := bnKline{
		Start:  1717200000000,
		Symbol: "btcusdt",
		Open:   "67000.1",
		High:   "67250.5",
		Low:    "66900.0",
		Close:  "67100.25",
		Volume: "123.45",
		Closed: true,
	}
	c, err := parseKline(k)
	if err != nil {
		t.Fatalf("parseKline: %v", err)
	}
	if c.Symbol != "BTCUSDT" {
		t.Fatalf("expected uppercased symbol, got %s", c.Symbol)
	}
	want := time.UnixMilli(1717200000000).UTC()
	if !c.Timestamp.Equal(want) {
		t.Fatalf("expected ts %v, got %v", want, c.Timestamp)
	}
	if c.Open != 67000.1 || c.High != 67250.5 || c.Low != 66900.0 || c.Close != 67100.25 || c.Volume != 123.45 {
		t.Fatalf("unexpected ohlcv: %+v", c)
	}
}

func TestParseKlineBadNumber(t *testing.T) {
	k := bnKline{Open: "not-a-number", High: "1", Low: "1", Close: "1", Volume: "1"}
	if _, err := parseKline(k); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConnectionStateConcurrentClose(t *testing.T) {
	c := &Client{reconnectDelay: time.Millisecond, pingInterval: time.Second}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = c.IsConnected()
				_ = c.Close()
			}
		}()
	}
	wg.Wait()

	if c.IsConnected() {
		t.Fatal("client should report disconnected after close")
	}
	if err := c.Subscribe(context.Background()); err == nil {
		t.Fatal("subscribe should fail when disconnected")
	}
}
