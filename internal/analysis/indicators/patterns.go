package indicators

import (
	"github.com/skalibog/signalscan/pkg/models"
)

// DetectPatterns определяет свечные паттерны по последней и предыдущей свече
func DetectPatterns(prev, last models.Candle) models.PatternFlags {
	var flags models.PatternFlags

	body := last.Body()
	bodySize := body
	if bodySize < 0 {
		bodySize = -bodySize
	}
	candleRange := last.Range()

	// Doji: тело меньше 10% диапазона
	if candleRange > 0 && bodySize/candleRange < 0.1 {
		flags.Doji = true
	}

	lowerWick := minFloat(last.Open, last.Close) - last.Low
	upperWick := last.High - maxFloat(last.Open, last.Close)

	if candleRange > 0 {
		// Hammer: длинная нижняя тень при короткой верхней
		if lowerWick > bodySize*2 && upperWick < bodySize*0.5 {
			flags.Hammer = true
		}
		// Shooting star: зеркально
		if upperWick > bodySize*2 && lowerWick < bodySize*0.5 {
			flags.ShootingStar = true
		}
	}

	// Engulfing: текущее тело полностью перекрывает противоположное предыдущее
	prevBody := prev.Body()
	if body > 0 && prevBody < 0 {
		if last.Open < prev.Close && last.Close > prev.Open {
			flags.BullishEngulfing = true
		}
	} else if body < 0 && prevBody > 0 {
		if last.Open > prev.Close && last.Close < prev.Open {
			flags.BearishEngulfing = true
		}
	}

	return flags
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
