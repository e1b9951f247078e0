package models

import (
	"time"
)

// Candle представляет свечу OHLCV
type Candle struct {
	OpenTime       time.Time
	Open           float64
	High           float64
	Low            float64
	Close          float64
	Volume         float64
	TakerBuyVolume float64
	CloseTime      time.Time
}

// Body возвращает тело свечи (положительное для бычьей)
func (c Candle) Body() float64 {
	return c.Close - c.Open
}

// Range возвращает полный диапазон свечи
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// Bullish сообщает, закрылась ли свеча выше открытия
func (c Candle) Bullish() bool {
	return c.Close > c.Open
}

// TickerStats представляет 24-часовую статистику символа
type TickerStats struct {
	Symbol      string
	LastPrice   float64
	PriceChange float64
	QuoteVolume float64
	High24h     float64
	Low24h      float64
	TradeCount  int64
}

// MACDCross обозначает пересечение MACD на последней свече
type MACDCross string

const (
	CrossNone    MACDCross = "none"
	CrossBullish MACDCross = "bullish"
	CrossBearish MACDCross = "bearish"
)

// EMATrend обозначает направление стека EMA 9/21/50/200
type EMATrend string

const (
	TrendNeutral       EMATrend = "neutral"
	TrendBullish       EMATrend = "bullish"
	TrendStrongBullish EMATrend = "strong_bullish"
	TrendBearish       EMATrend = "bearish"
	TrendStrongBearish EMATrend = "strong_bearish"
)

// BandPosition обозначает положение цены относительно полос Боллинджера
type BandPosition string

const (
	BandMiddle BandPosition = "middle"
	BandLower  BandPosition = "lower"
	BandUpper  BandPosition = "upper"
)

// PatternFlags представляет свечные паттерны на последней свече
type PatternFlags struct {
	Doji             bool
	Hammer           bool
	ShootingStar     bool
	BullishEngulfing bool
	BearishEngulfing bool
}

// IndicatorSnapshot представляет значения индикаторов по последней свече
type IndicatorSnapshot struct {
	RSI           float64
	MACD          float64
	MACDSignal    float64
	MACDHistogram float64
	MACDCross     MACDCross
	EMA9          float64
	EMA21         float64
	EMA50         float64
	EMA200        float64
	EMATrend      EMATrend
	BBUpper       float64
	BBMiddle      float64
	BBLower       float64
	BBPosition    BandPosition
	ATR           float64
	OBV           float64
	VolumeRatio   float64
	BuyPressure   float64
	Support       float64
	Resistance    float64
	// PriceDirection: +1 если последнее закрытие выше предыдущего, иначе -1
	PriceDirection int
	Patterns       PatternFlags
}

// SignalCategory представляет категорию сигнала
type SignalCategory string

const (
	SignalLong    SignalCategory = "LONG"
	SignalShort   SignalCategory = "SHORT"
	SignalNeutral SignalCategory = "NEUTRAL"
)

// Signal представляет результат скоринга для одного символа
type Signal struct {
	Symbol         string
	Timeframe      Timeframe
	Timestamp      time.Time
	CurrentPrice   float64
	Category       SignalCategory
	Strength       float64
	Entry          float64
	StopLoss       float64
	TakeProfit1    float64
	TakeProfit2    float64
	TakeProfit3    float64
	StopLossPct    float64
	TakeProfit1Pct float64
	TakeProfit2Pct float64
	RiskReward     float64
	Snapshot       *IndicatorSnapshot
}
