package technical

import (
	"errors"
	"testing"
	"time"

	"github.com/skalibog/signalscan/internal/config"
	"github.com/skalibog/signalscan/pkg/models"
)

func testConfig() config.IndicatorConfig {
	return config.IndicatorConfig{
		RSIPeriod:      14,
		MACDFast:       12,
		MACDSlow:       26,
		MACDSignal:     9,
		BBPeriod:       20,
		BBStdDev:       2.0,
		ATRPeriod:      14,
		EMAShort:       9,
		EMAMedium:      21,
		EMALong:        50,
		EMATrend:       200,
		VolumePeriod:   20,
		PressureWindow: 4,
		LevelPeriod:    20,
		MinCandles:     200,
	}
}

func flatSeries(t *testing.T, n int, price float64) *models.TimeSeries {
	t.Helper()
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := range candles {
		candles[i] = models.Candle{
			OpenTime:       start.Add(time.Duration(i) * time.Hour),
			Open:           price,
			High:           price,
			Low:            price,
			Close:          price,
			Volume:         100,
			TakerBuyVolume: 50,
			CloseTime:      start.Add(time.Duration(i+1) * time.Hour),
		}
	}
	series, err := models.NewTimeSeries("TESTUSDT", models.Timeframe1h, candles)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	return series
}

func upSeries(t *testing.T, n int, start, factor float64) *models.TimeSeries {
	t.Helper()
	begin := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	price := start
	for i := range candles {
		next := price * factor
		candles[i] = models.Candle{
			OpenTime:       begin.Add(time.Duration(i) * time.Hour),
			Open:           price,
			High:           next,
			Low:            price,
			Close:          next,
			Volume:         100,
			TakerBuyVolume: 60,
			CloseTime:      begin.Add(time.Duration(i+1) * time.Hour),
		}
		price = next
	}
	series, err := models.NewTimeSeries("TESTUSDT", models.Timeframe1h, candles)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	return series
}

func TestSnapshotRequiresMinCandles(t *testing.T) {
	analyzer := NewAnalyzer(testConfig())

	_, err := analyzer.Snapshot(flatSeries(t, 199, 100))
	if err == nil {
		t.Fatal("expected error for short history")
	}
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestSnapshotAtExactMinimum(t *testing.T) {
	analyzer := NewAnalyzer(testConfig())

	snap, err := analyzer.Snapshot(flatSeries(t, 200, 100))
	if err != nil {
		t.Fatalf("unexpected error at exact minimum: %v", err)
	}
	if snap == nil {
		t.Fatal("expected snapshot")
	}
}

func TestSnapshotFlatSeries(t *testing.T) {
	analyzer := NewAnalyzer(testConfig())

	snap, err := analyzer.Snapshot(flatSeries(t, 250, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.RSI != 100 {
		t.Errorf("expected rsi 100 on loss-free series, got %f", snap.RSI)
	}
	if snap.MACDHistogram != 0 {
		t.Errorf("expected zero histogram, got %f", snap.MACDHistogram)
	}
	if snap.MACDCross != models.CrossNone {
		t.Errorf("expected no cross, got %s", snap.MACDCross)
	}
	if snap.EMATrend != models.TrendNeutral {
		t.Errorf("expected neutral trend on flat series, got %s", snap.EMATrend)
	}
	if snap.ATR != 0 {
		t.Errorf("expected zero atr, got %f", snap.ATR)
	}
	if snap.BuyPressure != 0.5 {
		t.Errorf("expected buy pressure 0.5, got %f", snap.BuyPressure)
	}
	if snap.VolumeRatio != 1 {
		t.Errorf("expected volume ratio 1, got %f", snap.VolumeRatio)
	}
	// Вырожденные полосы: цена равна нижней границе
	if snap.BBPosition != models.BandLower {
		t.Errorf("expected lower band position on degenerate bands, got %s", snap.BBPosition)
	}
	if snap.PriceDirection != -1 {
		t.Errorf("expected direction -1 on equal closes, got %d", snap.PriceDirection)
	}
}

func TestSnapshotUptrend(t *testing.T) {
	analyzer := NewAnalyzer(testConfig())

	snap, err := analyzer.Snapshot(upSeries(t, 250, 100, 1.005))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.RSI != 100 {
		t.Errorf("expected rsi 100 on loss-free uptrend, got %f", snap.RSI)
	}
	if snap.EMATrend != models.TrendStrongBullish {
		t.Errorf("expected strong bullish stack, got %s", snap.EMATrend)
	}
	if !(snap.EMA9 > snap.EMA21 && snap.EMA21 > snap.EMA50 && snap.EMA50 > snap.EMA200) {
		t.Errorf("expected descending ema stack: %f %f %f %f", snap.EMA9, snap.EMA21, snap.EMA50, snap.EMA200)
	}
	if snap.MACDHistogram <= 0 {
		t.Errorf("expected positive histogram in steady uptrend, got %f", snap.MACDHistogram)
	}
	if snap.ATR <= 0 {
		t.Errorf("expected positive atr, got %f", snap.ATR)
	}
	if snap.PriceDirection != 1 {
		t.Errorf("expected direction +1, got %d", snap.PriceDirection)
	}
	if snap.Support <= 0 || snap.Resistance < snap.Support {
		t.Errorf("unexpected levels: %f / %f", snap.Support, snap.Resistance)
	}
}

func TestDetectCross(t *testing.T) {
	cases := []struct {
		prev, cur float64
		want      models.MACDCross
	}{
		{-1, 1, models.CrossBullish},
		{0, 1, models.CrossBullish},
		{1, -1, models.CrossBearish},
		{0, -1, models.CrossBearish},
		{1, 2, models.CrossNone},
		{-1, -2, models.CrossNone},
		{0, 0, models.CrossNone},
	}
	for _, c := range cases {
		if got := detectCross(c.prev, c.cur); got != c.want {
			t.Errorf("detectCross(%f, %f): expected %s, got %s", c.prev, c.cur, c.want, got)
		}
	}
}

func TestClassifyTrend(t *testing.T) {
	cases := []struct {
		name                     string
		ema9, ema21, ema50, e200 float64
		want                     models.EMATrend
	}{
		{"strong bullish", 4, 3, 2, 1, models.TrendStrongBullish},
		{"bullish without trend ema", 4, 3, 2, 5, models.TrendBullish},
		{"strong bearish", 1, 2, 3, 4, models.TrendStrongBearish},
		{"bearish without trend ema", 1, 2, 3, 0.5, models.TrendBearish},
		{"mixed", 3, 1, 2, 4, models.TrendNeutral},
		{"flat", 1, 1, 1, 1, models.TrendNeutral},
	}
	for _, c := range cases {
		if got := classifyTrend(c.ema9, c.ema21, c.ema50, c.e200); got != c.want {
			t.Errorf("%s: expected %s, got %s", c.name, c.want, got)
		}
	}
}

func TestClassifyBand(t *testing.T) {
	if got := classifyBand(95, 110, 96); got != models.BandLower {
		t.Errorf("expected lower, got %s", got)
	}
	if got := classifyBand(111, 110, 96); got != models.BandUpper {
		t.Errorf("expected upper, got %s", got)
	}
	if got := classifyBand(100, 110, 96); got != models.BandMiddle {
		t.Errorf("expected middle, got %s", got)
	}
	// Границы включительно
	if got := classifyBand(96, 110, 96); got != models.BandLower {
		t.Errorf("expected lower on exact touch, got %s", got)
	}
	if got := classifyBand(110, 110, 96); got != models.BandUpper {
		t.Errorf("expected upper on exact touch, got %s", got)
	}
}
