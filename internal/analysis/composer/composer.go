// Package composer превращает снапшот индикаторов в торговый сигнал:
// аддитивный скоринг от нейтральной базы, классификация по порогам и
// расчет уровней входа/стопа/целей от волатильности (ATR).
package composer

import (
	"fmt"
	"math"
	"time"

	"github.com/skalibog/signalscan/internal/config"
	"github.com/skalibog/signalscan/pkg/models"
)

// BaseScore задает нейтральную базу аддитивной модели
const BaseScore = 50.0

// Composer рассчитывает сигнал по снапшоту индикаторов
type Composer struct {
	config config.ScoringConfig
}

// NewComposer создает новый композер сигналов
func NewComposer(cfg config.ScoringConfig) *Composer {
	return &Composer{
		config: cfg,
	}
}

// Score возвращает силу сигнала 0-100 по аддитивной модели.
// Чистая функция: одинаковый снапшот дает одинаковый результат.
func (c *Composer) Score(snap *models.IndicatorSnapshot) float64 {
	score := BaseScore

	// RSI: перепроданность в плюс, перекупленность в минус
	switch {
	case snap.RSI < c.config.RSIOversold:
		score += 15
	case snap.RSI < c.config.RSIOversold+10:
		score += 8
	case snap.RSI > c.config.RSIOverbought:
		score -= 15
	case snap.RSI > c.config.RSIOverbought-10:
		score -= 8
	}

	// MACD: пересечение сильнее знака гистограммы
	switch snap.MACDCross {
	case models.CrossBullish:
		score += 15
	case models.CrossBearish:
		score -= 15
	default:
		if snap.MACDHistogram > 0 {
			score += 5
		} else {
			score -= 5
		}
	}

	// Стек EMA
	switch snap.EMATrend {
	case models.TrendStrongBullish:
		score += 15
	case models.TrendBullish:
		score += 8
	case models.TrendStrongBearish:
		score -= 15
	case models.TrendBearish:
		score -= 8
	}

	// Положение в полосах Боллинджера
	switch snap.BBPosition {
	case models.BandLower:
		score += 10
	case models.BandUpper:
		score -= 10
	}

	// Объемное подтверждение в направлении движения цены
	direction := float64(snap.PriceDirection)
	if snap.VolumeRatio > c.config.VolumeSpike {
		score += 10 * direction
	} else if snap.VolumeRatio > c.config.VolumeElevated {
		score += 5 * direction
	}

	// Свечные паттерны
	if snap.Patterns.BullishEngulfing || snap.Patterns.Hammer {
		score += 10
	}
	if snap.Patterns.BearishEngulfing || snap.Patterns.ShootingStar {
		score -= 10
	}

	return clamp(score, 0, 100)
}

// Compose классифицирует силу сигнала и рассчитывает уровни.
// Не делает повторных попыток и не подставляет значения вместо
// отсутствующего снапшота.
func (c *Composer) Compose(series *models.TimeSeries, snap *models.IndicatorSnapshot) (*models.Signal, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: снапшот индикаторов отсутствует", models.ErrInsufficientData)
	}

	last := series.Last()
	strength := c.Score(snap)

	var category models.SignalCategory
	switch {
	case strength >= c.config.ThresholdLong:
		category = models.SignalLong
	case strength <= c.config.ThresholdShort:
		category = models.SignalShort
	default:
		category = models.SignalNeutral
	}

	signal := &models.Signal{
		Symbol:       series.Symbol,
		Timeframe:    series.Timeframe,
		Timestamp:    time.Now().UTC(),
		CurrentPrice: last.Close,
		Category:     category,
		Strength:     strength,
		Entry:        last.Close,
		Snapshot:     snap,
	}

	if category == models.SignalNeutral {
		return signal, nil
	}

	c.applyTargets(signal, snap.ATR)
	return signal, nil
}

// applyTargets рассчитывает стоп и цели от ATR с учетом направления
func (c *Composer) applyTargets(signal *models.Signal, atr float64) {
	entry := signal.Entry
	stopDist := atr * c.config.ATRStopMultiplier

	tp := make([]float64, 3)
	for i := 0; i < 3 && i < len(c.config.ATRTPMultipliers); i++ {
		tp[i] = atr * c.config.ATRTPMultipliers[i]
	}

	if signal.Category == models.SignalLong {
		signal.StopLoss = entry - stopDist
		signal.TakeProfit1 = entry + tp[0]
		signal.TakeProfit2 = entry + tp[1]
		signal.TakeProfit3 = entry + tp[2]
	} else {
		signal.StopLoss = entry + stopDist
		signal.TakeProfit1 = entry - tp[0]
		signal.TakeProfit2 = entry - tp[1]
		signal.TakeProfit3 = entry - tp[2]
	}

	if entry > 0 {
		signal.StopLossPct = round2(stopDist / entry * 100)
		signal.TakeProfit1Pct = round2(tp[0] / entry * 100)
		signal.TakeProfit2Pct = round2(tp[1] / entry * 100)
	}
	if signal.StopLossPct > 0 {
		signal.RiskReward = round2(signal.TakeProfit2Pct / signal.StopLossPct)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
