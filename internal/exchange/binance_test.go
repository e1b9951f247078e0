package exchange

import (
	"strings"
	"testing"
	"time"

	"github.com/skalibog/signalscan/internal/config"
	"github.com/skalibog/signalscan/pkg/models"
)

func TestNewBinanceClientRejectsUnknownMarket(t *testing.T) {
	_, err := NewBinanceClient(config.BinanceConfig{Market: "margin"}, 200)
	if err == nil {
		t.Fatal("expected error for unknown market type")
	}

	for _, market := range []string{"spot", "futures"} {
		if _, err := NewBinanceClient(config.BinanceConfig{Market: market}, 200); err != nil {
			t.Fatalf("market %s: unexpected error: %v", market, err)
		}
	}
}

func TestNewBinanceClientTestnetEndpoints(t *testing.T) {
	client, err := NewBinanceClient(config.BinanceConfig{Market: "spot", Testnet: true}, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(client.spot.BaseURL, "testnet") {
		t.Errorf("expected spot testnet endpoint, got %q", client.spot.BaseURL)
	}
	if !strings.Contains(client.futures.BaseURL, "testnet") {
		t.Errorf("expected futures testnet endpoint, got %q", client.futures.BaseURL)
	}

	client, err = NewBinanceClient(config.BinanceConfig{Market: "spot", Testnet: false}, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(client.spot.BaseURL, "testnet") {
		t.Errorf("expected production spot endpoint, got %q", client.spot.BaseURL)
	}
	if strings.Contains(client.futures.BaseURL, "testnet") {
		t.Errorf("expected production futures endpoint, got %q", client.futures.BaseURL)
	}
}

func TestParseKline(t *testing.T) {
	openTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli()
	closeTime := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC).UnixMilli()

	candle, err := parseKline(models.Timeframe1h, openTime, closeTime,
		"65000.5", "65500.0", "64800.25", "65200.75", "1234.5", "700.25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if candle.Open != 65000.5 || candle.High != 65500.0 || candle.Low != 64800.25 || candle.Close != 65200.75 {
		t.Errorf("unexpected prices: %+v", candle)
	}
	if candle.Volume != 1234.5 || candle.TakerBuyVolume != 700.25 {
		t.Errorf("unexpected volumes: %+v", candle)
	}
	if !candle.OpenTime.Equal(time.UnixMilli(openTime)) {
		t.Errorf("unexpected open time: %v", candle.OpenTime)
	}
}

func TestParseKlineMalformed(t *testing.T) {
	cases := [][6]string{
		{"", "65500", "64800", "65200", "1234", "700"},
		{"65000", "abc", "64800", "65200", "1234", "700"},
		{"65000", "65500", "64800", "65200", "1234", "not-a-number"},
	}
	for _, c := range cases {
		_, err := parseKline(models.Timeframe1h, 0, 0, c[0], c[1], c[2], c[3], c[4], c[5])
		if err == nil {
			t.Errorf("expected error for fields %v", c)
		}
	}
}

func TestParseTicker(t *testing.T) {
	stats, err := parseTicker("BTCUSDT", "65000.5", "2.35", "1500000000", "66000", "64000", 123456)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Symbol != "BTCUSDT" || stats.LastPrice != 65000.5 || stats.QuoteVolume != 1500000000 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.TradeCount != 123456 {
		t.Errorf("unexpected trade count: %d", stats.TradeCount)
	}

	if _, err := parseTicker("BTCUSDT", "bad", "2.35", "1", "1", "1", 0); err == nil {
		t.Error("expected error for malformed price")
	}
}

func TestLeveragedTokenFilter(t *testing.T) {
	leveraged := []string{"BTCUPUSDT", "BTCDOWNUSDT", "ETHBEARUSDT", "ETHBULLUSDT"}
	for _, sym := range leveraged {
		if !leveragedToken(sym) {
			t.Errorf("%s should be flagged as leveraged", sym)
		}
	}

	plain := []string{"BTCUSDT", "ETHUSDT", "SOLUSDT", "SUIUSDT"}
	for _, sym := range plain {
		if leveragedToken(sym) {
			t.Errorf("%s should not be flagged as leveraged", sym)
		}
	}
}
