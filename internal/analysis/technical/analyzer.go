package technical

import (
	"fmt"

	"github.com/skalibog/signalscan/internal/analysis/indicators"
	"github.com/skalibog/signalscan/internal/config"
	"github.com/skalibog/signalscan/pkg/models"
)

// Analyzer собирает снапшот индикаторов по ряду свечей
type Analyzer struct {
	config config.IndicatorConfig
}

// NewAnalyzer создает новый анализатор индикаторов
func NewAnalyzer(cfg config.IndicatorConfig) *Analyzer {
	return &Analyzer{
		config: cfg,
	}
}

// Snapshot рассчитывает все индикаторы по последней свече ряда.
// Обязательные индикаторы (RSI, MACD, EMA тренда, ATR) требуют полной
// истории: при ее нехватке возвращается ErrInsufficientData, а не снапшот
// с подставленными нулями.
func (a *Analyzer) Snapshot(series *models.TimeSeries) (*models.IndicatorSnapshot, error) {
	if series.Len() < a.config.MinCandles {
		return nil, fmt.Errorf("%w: %s %s: %d свечей, требуется %d",
			models.ErrInsufficientData, series.Symbol, series.Timeframe, series.Len(), a.config.MinCandles)
	}

	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	volumes := series.Volumes()

	rsi, rsiOK := indicators.RSI(closes, a.config.RSIPeriod)
	macd, macdSig, hist, prevHist, macdOK := indicators.MACD(closes, a.config.MACDFast, a.config.MACDSlow, a.config.MACDSignal)
	emaTrend, emaTrendOK := indicators.EMA(closes, a.config.EMATrend)
	atr, atrOK := indicators.ATR(highs, lows, closes, a.config.ATRPeriod)

	if !rsiOK || !macdOK || !emaTrendOK || !atrOK {
		return nil, fmt.Errorf("%w: %s %s: обязательные индикаторы не рассчитаны",
			models.ErrInsufficientData, series.Symbol, series.Timeframe)
	}

	snap := &models.IndicatorSnapshot{
		RSI:           rsi,
		MACD:          macd,
		MACDSignal:    macdSig,
		MACDHistogram: hist,
		MACDCross:     detectCross(prevHist, hist),
		EMA200:        emaTrend,
		ATR:           atr,
	}

	snap.EMA9, _ = indicators.EMA(closes, a.config.EMAShort)
	snap.EMA21, _ = indicators.EMA(closes, a.config.EMAMedium)
	snap.EMA50, _ = indicators.EMA(closes, a.config.EMALong)
	snap.EMATrend = classifyTrend(snap.EMA9, snap.EMA21, snap.EMA50, snap.EMA200)

	last := series.Last()
	prev := series.Prev()

	if upper, middle, lower, ok := indicators.Bollinger(closes, a.config.BBPeriod, a.config.BBStdDev); ok {
		snap.BBUpper = upper
		snap.BBMiddle = middle
		snap.BBLower = lower
		snap.BBPosition = classifyBand(last.Close, upper, lower)
	} else {
		snap.BBPosition = models.BandMiddle
	}

	if obv, ok := indicators.OBV(closes, volumes); ok {
		snap.OBV = obv
	}
	if ratio, ok := indicators.VolumeRatio(volumes, a.config.VolumePeriod); ok {
		snap.VolumeRatio = ratio
	}
	if support, resistance, ok := indicators.Levels(highs, lows, a.config.LevelPeriod); ok {
		snap.Support = support
		snap.Resistance = resistance
	}

	snap.BuyPressure = indicators.BuyPressure(series.Candles, a.config.PressureWindow)
	snap.Patterns = indicators.DetectPatterns(prev, last)

	if last.Close > prev.Close {
		snap.PriceDirection = 1
	} else {
		snap.PriceDirection = -1
	}

	return snap, nil
}

// detectCross определяет пересечение MACD по смене знака гистограммы
// между предыдущей и текущей свечой
func detectCross(prevHist, hist float64) models.MACDCross {
	if prevHist <= 0 && hist > 0 {
		return models.CrossBullish
	}
	if prevHist >= 0 && hist < 0 {
		return models.CrossBearish
	}
	return models.CrossNone
}

// classifyTrend определяет направление стека EMA
func classifyTrend(ema9, ema21, ema50, ema200 float64) models.EMATrend {
	switch {
	case ema9 > ema21 && ema21 > ema50 && ema50 > ema200:
		return models.TrendStrongBullish
	case ema9 > ema21 && ema21 > ema50:
		return models.TrendBullish
	case ema9 < ema21 && ema21 < ema50 && ema50 < ema200:
		return models.TrendStrongBearish
	case ema9 < ema21 && ema21 < ema50:
		return models.TrendBearish
	default:
		return models.TrendNeutral
	}
}

// classifyBand определяет положение цены относительно полос Боллинджера
func classifyBand(price, upper, lower float64) models.BandPosition {
	if price <= lower {
		return models.BandLower
	}
	if price >= upper {
		return models.BandUpper
	}
	return models.BandMiddle
}
