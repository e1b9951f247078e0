// Package scanner прогоняет пайплайн адаптер → индикаторы → композер
// по списку символов. Параллелизм, ретраи и rate-limit живут здесь,
// сам движок скоринга остается чистым вычислением.
package scanner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skalibog/signalscan/internal/analysis/composer"
	"github.com/skalibog/signalscan/internal/analysis/technical"
	"github.com/skalibog/signalscan/internal/config"
	"github.com/skalibog/signalscan/internal/notify"
	"github.com/skalibog/signalscan/internal/storage"
	"github.com/skalibog/signalscan/pkg/logger"
	"github.com/skalibog/signalscan/pkg/models"
)

// maxFetchAttempts ограничивает попытки получения свечей на один символ за цикл
const maxFetchAttempts = 3

// Source задает контракт источника рыночных данных, только чтение
type Source interface {
	Klines(ctx context.Context, symbol string, tf models.Timeframe, limit int) (*models.TimeSeries, error)
	TopSymbols(ctx context.Context, limit int, minQuoteVolume float64) ([]models.TickerStats, error)
}

// Scanner обходит символы и собирает сигналы за цикл
type Scanner struct {
	config    config.ScannerConfig
	source    Source
	technical *technical.Analyzer
	composer  *composer.Composer
	storage   storage.Storage
	notifier  notify.Notifier
	limit     int // запрашиваемое число свечей
}

// New создает сканер. storage и notifier могут быть nil:
// тогда cooldown и отправка уведомлений отключены.
func New(cfg config.ScannerConfig, minCandles int, source Source, tech *technical.Analyzer, comp *composer.Composer, store storage.Storage, notifier notify.Notifier) *Scanner {
	limit := minCandles + 50
	if limit > 1000 {
		limit = 1000
	}
	return &Scanner{
		config:    cfg,
		source:    source,
		technical: tech,
		composer:  comp,
		storage:   store,
		notifier:  notifier,
		limit:     limit,
	}
}

// Scan выполняет один цикл по всем символам и интервалам.
// Отмена контекста останавливает цикл целиком, но уже посчитанные
// сигналы возвращаются, а не отбрасываются.
func (s *Scanner) Scan(ctx context.Context) ([]*models.Signal, error) {
	symbols, err := s.resolveSymbols(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var signals []*models.Signal

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	pause := time.Duration(s.config.PauseMS) * time.Millisecond
	for _, symbol := range symbols {
		for _, tf := range s.config.Timeframes {
			symbol, timeframe := symbol, models.Timeframe(tf)
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return nil
				case <-time.After(pause): // пауза между запросами к API
				}

				signal := s.scanOne(gctx, symbol, timeframe)
				if signal == nil {
					return nil
				}

				mu.Lock()
				signals = append(signals, signal)
				mu.Unlock()

				s.dispatch(gctx, signal)
				return nil
			})
		}
	}

	_ = g.Wait() // воркеры не возвращают ошибок, частичные результаты сохраняются
	if ctx.Err() != nil {
		return signals, ctx.Err()
	}
	return signals, nil
}

// resolveSymbols объединяет символы из конфигурации и топ по обороту
func (s *Scanner) resolveSymbols(ctx context.Context) ([]string, error) {
	symbols := make([]string, 0, len(s.config.Symbols))
	seen := make(map[string]bool)
	for _, sym := range s.config.Symbols {
		if !seen[sym] {
			seen[sym] = true
			symbols = append(symbols, sym)
		}
	}

	if s.config.DiscoverTop > 0 {
		tickers, err := s.source.TopSymbols(ctx, s.config.DiscoverTop, s.config.MinQuoteVolume)
		if err != nil {
			// Дискавери не критичен: работаем по списку из конфигурации
			logger.Warn("Не удалось получить топ символов", zap.Error(err))
		}
		for _, t := range tickers {
			if !seen[t.Symbol] {
				seen[t.Symbol] = true
				symbols = append(symbols, t.Symbol)
			}
		}
	}

	if len(symbols) == 0 {
		return nil, errors.New("список символов пуст")
	}
	return symbols, nil
}

// scanOne считает сигнал для одной пары (символ, интервал).
// Возвращает nil, если данных нет: такой пропуск не подменяется
// нейтральным сигналом.
func (s *Scanner) scanOne(ctx context.Context, symbol string, tf models.Timeframe) *models.Signal {
	timeout := time.Duration(s.config.SymbolTimeoutMS) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	series, err := s.fetchSeries(ctx, symbol, tf)
	if err != nil {
		logger.Warn("Свечи недоступны, символ пропущен",
			zap.String("symbol", symbol), zap.String("timeframe", tf.String()), zap.Error(err))
		return nil
	}

	snapshot, err := s.technical.Snapshot(series)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientData) {
			logger.Warn("Нет сигнала в этом цикле: недостаточно истории",
				zap.String("symbol", symbol), zap.String("timeframe", tf.String()),
				zap.Int("candles", series.Len()))
		} else {
			logger.Error("Ошибка расчета индикаторов",
				zap.String("symbol", symbol), zap.Error(err))
		}
		return nil
	}

	signal, err := s.composer.Compose(series, snapshot)
	if err != nil {
		logger.Error("Ошибка композиции сигнала",
			zap.String("symbol", symbol), zap.Error(err))
		return nil
	}

	logger.Debug("Сигнал рассчитан",
		zap.String("symbol", symbol),
		zap.String("timeframe", tf.String()),
		zap.String("category", string(signal.Category)),
		zap.Float64("strength", signal.Strength))

	return signal
}

// fetchSeries получает ряд свечей с ретраями недоступного источника.
// Ретраи живут здесь, а не в адаптере: политика повторов принадлежит
// вызывающей стороне.
func (s *Scanner) fetchSeries(ctx context.Context, symbol string, tf models.Timeframe) (*models.TimeSeries, error) {
	b := &backoff.Backoff{
		Min:    500 * time.Millisecond,
		Max:    5 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	var series *models.TimeSeries
	var err error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		series, err = s.source.Klines(ctx, symbol, tf, s.limit)
		if err == nil {
			return series, nil
		}
		if !errors.Is(err, models.ErrDataUnavailable) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
	return nil, err
}

// dispatch сохраняет и рассылает сигнал, если он проходит пороги.
// Cooldown: по символу, уже давшему сигнал внутри окна, повторная
// отправка подавляется.
func (s *Scanner) dispatch(ctx context.Context, signal *models.Signal) {
	if signal.Category == models.SignalNeutral || signal.Strength < s.config.MinStrength {
		return
	}

	if s.storage != nil && s.config.CooldownMinutes > 0 {
		window := time.Duration(s.config.CooldownMinutes) * time.Minute
		if _, found, err := s.storage.LastSignalAt(ctx, signal.Symbol, window); err != nil {
			logger.Warn("Ошибка проверки cooldown", zap.String("symbol", signal.Symbol), zap.Error(err))
		} else if found {
			logger.Debug("Сигнал подавлен по cooldown", zap.String("symbol", signal.Symbol))
			return
		}
	}

	if s.storage != nil {
		if err := s.storage.SaveSignal(ctx, signal); err != nil {
			logger.Warn("Не удалось сохранить сигнал", zap.String("symbol", signal.Symbol), zap.Error(err))
		}
	}

	if s.notifier != nil {
		if err := s.notifier.Send(ctx, signal); err != nil {
			logger.Warn("Не удалось отправить уведомление", zap.String("symbol", signal.Symbol), zap.Error(err))
		}
	}
}
