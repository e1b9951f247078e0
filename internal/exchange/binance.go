package exchange

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"

	"github.com/skalibog/signalscan/internal/config"
	"github.com/skalibog/signalscan/pkg/models"
)

// BinanceClient реализует адаптер рыночных данных поверх Binance (spot и futures).
// Только чтение: свечи и суточная статистика. Без ретраев и кеширования,
// политика повторов принадлежит вызывающей стороне.
type BinanceClient struct {
	spot       *binance.Client
	futures    *futures.Client
	market     string
	minCandles int
}

// NewBinanceClient создает новый клиент Binance
func NewBinanceClient(cfg config.BinanceConfig, minCandles int) (*BinanceClient, error) {
	switch cfg.Market {
	case "spot", "futures":
	default:
		return nil, fmt.Errorf("неизвестный тип рынка: %q", cfg.Market)
	}

	// UseTestnet читается при создании клиента
	binance.UseTestnet = cfg.Testnet
	futures.UseTestnet = cfg.Testnet

	spotClient := binance.NewClient(cfg.APIKey, cfg.APISecret)
	futuresClient := futures.NewClient(cfg.APIKey, cfg.APISecret)

	return &BinanceClient{
		spot:       spotClient,
		futures:    futuresClient,
		market:     cfg.Market,
		minCandles: minCandles,
	}, nil
}

// Klines получает исторические свечи и нормализует их во временной ряд.
// При пустом или битом ответе, а также при нехватке свечей до минимума,
// возвращает ErrDataUnavailable: ряд с нулевой подменой хуже отсутствия ряда.
func (c *BinanceClient) Klines(ctx context.Context, symbol string, tf models.Timeframe, limit int) (*models.TimeSeries, error) {
	if !tf.Valid() {
		return nil, fmt.Errorf("%w: неподдерживаемый интервал %q", models.ErrDataUnavailable, tf)
	}

	var candles []models.Candle
	var err error
	if c.market == "futures" {
		candles, err = c.futuresKlines(ctx, symbol, tf, limit)
	} else {
		candles, err = c.spotKlines(ctx, symbol, tf, limit)
	}
	if err != nil {
		return nil, err
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: пустой ответ для %s %s", models.ErrDataUnavailable, symbol, tf)
	}
	if len(candles) < c.minCandles {
		return nil, fmt.Errorf("%w: %s %s: %d свечей, минимум %d",
			models.ErrDataUnavailable, symbol, tf, len(candles), c.minCandles)
	}

	series, err := models.NewTimeSeries(symbol, tf, candles)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}
	return series, nil
}

func (c *BinanceClient) spotKlines(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.Candle, error) {
	klines, err := c.spot.NewKlinesService().
		Symbol(symbol).
		Interval(tf.String()).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: ошибка получения свечей %s: %v", models.ErrDataUnavailable, symbol, err)
	}

	candles := make([]models.Candle, len(klines))
	for i, k := range klines {
		candle, err := parseKline(tf, k.OpenTime, k.CloseTime, k.Open, k.High, k.Low, k.Close, k.Volume, k.TakerBuyBaseAssetVolume)
		if err != nil {
			return nil, fmt.Errorf("%w: битая свеча %s: %v", models.ErrDataUnavailable, symbol, err)
		}
		candles[i] = candle
	}
	return candles, nil
}

func (c *BinanceClient) futuresKlines(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.Candle, error) {
	klines, err := c.futures.NewKlinesService().
		Symbol(symbol).
		Interval(tf.String()).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: ошибка получения свечей %s: %v", models.ErrDataUnavailable, symbol, err)
	}

	candles := make([]models.Candle, len(klines))
	for i, k := range klines {
		candle, err := parseKline(tf, k.OpenTime, k.CloseTime, k.Open, k.High, k.Low, k.Close, k.Volume, k.TakerBuyBaseAssetVolume)
		if err != nil {
			return nil, fmt.Errorf("%w: битая свеча %s: %v", models.ErrDataUnavailable, symbol, err)
		}
		candles[i] = candle
	}
	return candles, nil
}

// parseKline конвертирует строковые поля биржи в свечу
func parseKline(tf models.Timeframe, openTime, closeTime int64, open, high, low, closePrice, volume, takerBuy string) (models.Candle, error) {
	fields := [6]string{open, high, low, closePrice, volume, takerBuy}
	var parsed [6]float64
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("не удалось разобрать значение %q", s)
		}
		parsed[i] = v
	}

	return models.Candle{
		OpenTime:       time.UnixMilli(openTime),
		Open:           parsed[0],
		High:           parsed[1],
		Low:            parsed[2],
		Close:          parsed[3],
		Volume:         parsed[4],
		TakerBuyVolume: parsed[5],
		CloseTime:      time.UnixMilli(closeTime),
	}, nil
}

// TopSymbols возвращает пары USDT с наибольшим суточным оборотом.
// Токены с плечом (UP/DOWN/BEAR/BULL) отбрасываются.
func (c *BinanceClient) TopSymbols(ctx context.Context, limit int, minQuoteVolume float64) ([]models.TickerStats, error) {
	var stats []models.TickerStats
	var err error
	if c.market == "futures" {
		stats, err = c.futuresTickers(ctx)
	} else {
		stats, err = c.spotTickers(ctx)
	}
	if err != nil {
		return nil, err
	}

	filtered := stats[:0]
	for _, s := range stats {
		if !strings.HasSuffix(s.Symbol, "USDT") {
			continue
		}
		if leveragedToken(s.Symbol) {
			continue
		}
		if s.QuoteVolume < minQuoteVolume {
			continue
		}
		filtered = append(filtered, s)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].QuoteVolume > filtered[j].QuoteVolume
	})

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (c *BinanceClient) spotTickers(ctx context.Context) ([]models.TickerStats, error) {
	tickers, err := c.spot.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: ошибка получения суточной статистики: %v", models.ErrDataUnavailable, err)
	}

	stats := make([]models.TickerStats, 0, len(tickers))
	for _, t := range tickers {
		s, err := parseTicker(t.Symbol, t.LastPrice, t.PriceChangePercent, t.QuoteVolume, t.HighPrice, t.LowPrice, t.Count)
		if err != nil {
			continue // битые записи не роняют весь список
		}
		stats = append(stats, s)
	}
	return stats, nil
}

func (c *BinanceClient) futuresTickers(ctx context.Context) ([]models.TickerStats, error) {
	tickers, err := c.futures.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: ошибка получения суточной статистики: %v", models.ErrDataUnavailable, err)
	}

	stats := make([]models.TickerStats, 0, len(tickers))
	for _, t := range tickers {
		s, err := parseTicker(t.Symbol, t.LastPrice, t.PriceChangePercent, t.QuoteVolume, t.HighPrice, t.LowPrice, t.Count)
		if err != nil {
			continue
		}
		stats = append(stats, s)
	}
	return stats, nil
}

func parseTicker(symbol, lastPrice, changePct, quoteVolume, high, low string, count int64) (models.TickerStats, error) {
	fields := [5]string{lastPrice, changePct, quoteVolume, high, low}
	var parsed [5]float64
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.TickerStats{}, fmt.Errorf("не удалось разобрать значение %q", s)
		}
		parsed[i] = v
	}

	return models.TickerStats{
		Symbol:      symbol,
		LastPrice:   parsed[0],
		PriceChange: parsed[1],
		QuoteVolume: parsed[2],
		High24h:     parsed[3],
		Low24h:      parsed[4],
		TradeCount:  count,
	}, nil
}

// leveragedToken отфильтровывает синтетические токены с плечом
func leveragedToken(symbol string) bool {
	base := strings.TrimSuffix(symbol, "USDT")
	for _, marker := range []string{"UP", "DOWN", "BEAR", "BULL"} {
		if strings.HasSuffix(base, marker) {
			return true
		}
	}
	return false
}
