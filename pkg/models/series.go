package models

import (
	"fmt"
	"time"
)

// Timeframe представляет интервал свечей
type Timeframe string

const (
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe1d  Timeframe = "1d"
)

// Duration возвращает длительность интервала
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case Timeframe5m:
		return 5 * time.Minute
	case Timeframe15m:
		return 15 * time.Minute
	case Timeframe1h:
		return time.Hour
	case Timeframe4h:
		return 4 * time.Hour
	case Timeframe1d:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

// Valid проверяет, что интервал входит в поддерживаемый набор
func (tf Timeframe) Valid() bool {
	switch tf {
	case Timeframe5m, Timeframe15m, Timeframe1h, Timeframe4h, Timeframe1d:
		return true
	}
	return false
}

func (tf Timeframe) String() string {
	return string(tf)
}

// TimeSeries представляет упорядоченный ряд свечей для пары (символ, интервал).
// Инвариант: строго возрастающее время открытия.
type TimeSeries struct {
	Symbol    string
	Timeframe Timeframe
	Candles   []Candle
}

// NewTimeSeries создает ряд и проверяет порядок свечей
func NewTimeSeries(symbol string, tf Timeframe, candles []Candle) (*TimeSeries, error) {
	for i := 1; i < len(candles); i++ {
		if !candles[i].OpenTime.After(candles[i-1].OpenTime) {
			return nil, fmt.Errorf("нарушен порядок свечей %s %s: %v после %v",
				symbol, tf, candles[i].OpenTime, candles[i-1].OpenTime)
		}
	}
	return &TimeSeries{Symbol: symbol, Timeframe: tf, Candles: candles}, nil
}

// Len возвращает количество свечей
func (s *TimeSeries) Len() int {
	return len(s.Candles)
}

// Last возвращает последнюю свечу
func (s *TimeSeries) Last() Candle {
	return s.Candles[len(s.Candles)-1]
}

// Prev возвращает предпоследнюю свечу
func (s *TimeSeries) Prev() Candle {
	return s.Candles[len(s.Candles)-2]
}

// Closes возвращает цены закрытия
func (s *TimeSeries) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Highs возвращает максимумы
func (s *TimeSeries) Highs() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.High
	}
	return out
}

// Lows возвращает минимумы
func (s *TimeSeries) Lows() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Low
	}
	return out
}

// Volumes возвращает объемы
func (s *TimeSeries) Volumes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Volume
	}
	return out
}
