// Package indicators содержит чистые функции расчета технических индикаторов.
// Каждая функция при нехватке истории возвращает ok=false, а не панику:
// решение об отказе от скоринга принимает вызывающая сторона.
package indicators

import (
	"github.com/markcheno/go-talib"

	"github.com/skalibog/signalscan/pkg/models"
)

// RSI рассчитывает Relative Strength Index по сглаживанию Уайлдера.
// Реализован вручную: при нулевой средней потере RSI равен ровно 100,
// talib в этом случае возвращает 0.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, true
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// MACD возвращает последние значения линии MACD, сигнальной линии и
// гистограммы, плюс предыдущее значение гистограммы для детекции пересечения
func MACD(closes []float64, fast, slow, signal int) (macd, sig, hist, prevHist float64, ok bool) {
	if len(closes) < slow+signal+1 {
		return 0, 0, 0, 0, false
	}

	macdLine, signalLine, histLine := talib.Macd(closes, fast, slow, signal)
	n := len(histLine)
	return macdLine[n-1], signalLine[n-1], histLine[n-1], histLine[n-2], true
}

// EMA возвращает последнее значение экспоненциальной скользящей средней
func EMA(closes []float64, span int) (float64, bool) {
	if span <= 0 || len(closes) < span {
		return 0, false
	}
	ema := talib.Ema(closes, span)
	return ema[len(ema)-1], true
}

// Bollinger возвращает последние значения полос Боллинджера (SMA ± stddev×σ)
func Bollinger(closes []float64, period int, stddev float64) (upper, middle, lower float64, ok bool) {
	if period <= 0 || len(closes) < period {
		return 0, 0, 0, false
	}
	up, mid, low := talib.BBands(closes, period, stddev, stddev, 0)
	n := len(closes)
	return up[n-1], mid[n-1], low[n-1], true
}

// ATR возвращает последнее значение Average True Range
func ATR(highs, lows, closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}
	atr := talib.Atr(highs, lows, closes, period)
	return atr[len(atr)-1], true
}

// OBV возвращает последнее значение On-Balance Volume
func OBV(closes, volumes []float64) (float64, bool) {
	if len(closes) == 0 || len(closes) != len(volumes) {
		return 0, false
	}
	obv := talib.Obv(closes, volumes)
	return obv[len(obv)-1], true
}

// VolumeRatio возвращает отношение объема последней свечи к среднему объему
// за предыдущие period свечей. Текущая свеча в среднее не входит.
func VolumeRatio(volumes []float64, period int) (float64, bool) {
	if period <= 0 || len(volumes) < period+1 {
		return 0, false
	}

	var sum float64
	for _, v := range volumes[len(volumes)-1-period : len(volumes)-1] {
		sum += v
	}
	avg := sum / float64(period)
	if avg == 0 {
		return 0, false
	}
	return volumes[len(volumes)-1] / avg, true
}

// BuyPressure возвращает долю тейкерского покупательного объема за последние
// window свечей. При нулевом суммарном объеме возвращает 0.5 (нет перевеса).
func BuyPressure(candles []models.Candle, window int) float64 {
	if window <= 0 || len(candles) == 0 {
		return 0.5
	}
	if window > len(candles) {
		window = len(candles)
	}

	var taker, total float64
	for _, c := range candles[len(candles)-window:] {
		taker += c.TakerBuyVolume
		total += c.Volume
	}
	if total == 0 {
		return 0.5
	}
	return taker / total
}

// Levels возвращает скользящие уровни поддержки и сопротивления:
// минимум low и максимум high за period свечей
func Levels(highs, lows []float64, period int) (support, resistance float64, ok bool) {
	if period <= 0 || len(highs) < period || len(lows) < period {
		return 0, 0, false
	}

	resistance = highs[len(highs)-period]
	for _, h := range highs[len(highs)-period:] {
		if h > resistance {
			resistance = h
		}
	}
	support = lows[len(lows)-period]
	for _, l := range lows[len(lows)-period:] {
		if l < support {
			support = l
		}
	}
	return support, resistance, true
}
