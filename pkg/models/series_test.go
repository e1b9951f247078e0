package models

import (
	"testing"
	"time"
)

func makeCandles(n int, step time.Duration) []Candle {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]Candle, n)
	for i := range candles {
		candles[i] = Candle{
			OpenTime:  start.Add(time.Duration(i) * step),
			Open:      100,
			High:      101,
			Low:       99,
			Close:     100,
			Volume:    10,
			CloseTime: start.Add(time.Duration(i+1) * step),
		}
	}
	return candles
}

func TestNewTimeSeriesOrdered(t *testing.T) {
	series, err := NewTimeSeries("BTCUSDT", Timeframe1h, makeCandles(5, time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.Len() != 5 {
		t.Fatalf("expected 5 candles, got %d", series.Len())
	}
}

func TestNewTimeSeriesRejectsUnordered(t *testing.T) {
	candles := makeCandles(5, time.Hour)
	candles[2].OpenTime = candles[1].OpenTime // дубликат времени

	if _, err := NewTimeSeries("BTCUSDT", Timeframe1h, candles); err == nil {
		t.Fatal("expected error for duplicate open time")
	}

	candles = makeCandles(5, time.Hour)
	candles[3], candles[4] = candles[4], candles[3]
	if _, err := NewTimeSeries("BTCUSDT", Timeframe1h, candles); err == nil {
		t.Fatal("expected error for out-of-order candles")
	}
}

func TestTimeframeDuration(t *testing.T) {
	cases := []struct {
		tf   Timeframe
		want time.Duration
	}{
		{Timeframe5m, 5 * time.Minute},
		{Timeframe15m, 15 * time.Minute},
		{Timeframe1h, time.Hour},
		{Timeframe4h, 4 * time.Hour},
		{Timeframe1d, 24 * time.Hour},
	}
	for _, c := range cases {
		if got := c.tf.Duration(); got != c.want {
			t.Errorf("%s: expected %v, got %v", c.tf, c.want, got)
		}
	}
}

func TestTimeframeValid(t *testing.T) {
	for _, tf := range []Timeframe{Timeframe5m, Timeframe15m, Timeframe1h, Timeframe4h, Timeframe1d} {
		if !tf.Valid() {
			t.Errorf("%s should be valid", tf)
		}
	}
	for _, tf := range []Timeframe{"", "1m", "30m", "1w", "1H"} {
		if tf.Valid() {
			t.Errorf("%s should be invalid", tf)
		}
	}
}

func TestSeriesAccessors(t *testing.T) {
	candles := makeCandles(3, time.Hour)
	candles[1].Close = 105
	candles[2].Close = 110

	series, err := NewTimeSeries("ETHUSDT", Timeframe4h, candles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.Last().Close != 110 {
		t.Errorf("expected last close 110, got %f", series.Last().Close)
	}
	if series.Prev().Close != 105 {
		t.Errorf("expected prev close 105, got %f", series.Prev().Close)
	}
	closes := series.Closes()
	if len(closes) != 3 || closes[2] != 110 {
		t.Errorf("unexpected closes: %v", closes)
	}
}

func TestCandleHelpers(t *testing.T) {
	bull := Candle{Open: 100, High: 112, Low: 98, Close: 110}
	if bull.Body() != 10 {
		t.Errorf("expected body 10, got %f", bull.Body())
	}
	if bull.Range() != 14 {
		t.Errorf("expected range 14, got %f", bull.Range())
	}
	if !bull.Bullish() {
		t.Error("expected bullish candle")
	}

	bear := Candle{Open: 110, High: 112, Low: 98, Close: 100}
	if bear.Bullish() {
		t.Error("expected bearish candle")
	}
}
