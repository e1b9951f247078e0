package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/skalibog/signalscan/pkg/models"
)

func longSignal() *models.Signal {
	return &models.Signal{
		Symbol:         "BTCUSDT",
		Timeframe:      models.Timeframe1h,
		CurrentPrice:   65000,
		Category:       models.SignalLong,
		Strength:       72,
		Entry:          65000,
		StopLoss:       64025,
		TakeProfit1:    65650,
		TakeProfit2:    66300,
		TakeProfit3:    66950,
		StopLossPct:    1.5,
		TakeProfit1Pct: 1,
		TakeProfit2Pct: 2,
		RiskReward:     1.33,
		Snapshot: &models.IndicatorSnapshot{
			RSI:           62.4,
			MACDHistogram: 12.5,
			VolumeRatio:   2.3,
			BuyPressure:   0.64,
		},
	}
}

func TestEnabled(t *testing.T) {
	if NewTelegramNotifier("", "").Enabled() {
		t.Error("empty credentials must disable notifier")
	}
	if NewTelegramNotifier("token", "").Enabled() {
		t.Error("missing chat id must disable notifier")
	}
	if !NewTelegramNotifier("token", "123").Enabled() {
		t.Error("expected enabled notifier")
	}
}

func TestSendDisabledIsNoop(t *testing.T) {
	n := NewTelegramNotifier("", "")
	if err := n.Send(context.Background(), longSignal()); err != nil {
		t.Fatalf("disabled notifier must not fail: %v", err)
	}
}

func TestFormatSignalLong(t *testing.T) {
	text := FormatSignal(longSignal())

	for _, want := range []string{
		"🟢", "BTCUSDT", "1h", "LONG",
		"Сила: <b>72</b>/100",
		"Вход: 65000",
		"Стоп: 64025 (1.50%)",
		"TP2: 66300 (2.00%)",
		"R/R: 1.33",
		"RSI 62.4",
		"Покупки 64%",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in message:\n%s", want, text)
		}
	}
}

func TestFormatSignalNeutralOmitsTargets(t *testing.T) {
	s := longSignal()
	s.Category = models.SignalNeutral
	s.Strength = 52

	text := FormatSignal(s)
	if !strings.Contains(text, "⚪") {
		t.Error("expected neutral marker")
	}
	for _, absent := range []string{"Вход:", "Стоп:", "TP1", "R/R"} {
		if strings.Contains(text, absent) {
			t.Errorf("neutral message must not contain %q:\n%s", absent, text)
		}
	}
}

func TestFormatSignalShortMarker(t *testing.T) {
	s := longSignal()
	s.Category = models.SignalShort
	if !strings.Contains(FormatSignal(s), "🔴") {
		t.Error("expected short marker")
	}
}
