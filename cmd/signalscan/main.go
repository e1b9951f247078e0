package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/skalibog/signalscan/internal/analysis/composer"
	"github.com/skalibog/signalscan/internal/analysis/technical"
	"github.com/skalibog/signalscan/internal/config"
	"github.com/skalibog/signalscan/internal/exchange"
	"github.com/skalibog/signalscan/internal/notify"
	"github.com/skalibog/signalscan/internal/scanner"
	"github.com/skalibog/signalscan/internal/storage"
	"github.com/skalibog/signalscan/internal/ui"
	"github.com/skalibog/signalscan/pkg/logger"
	"github.com/skalibog/signalscan/pkg/models"
)

func main() {
	// Секреты из .env, если файл есть
	_ = godotenv.Load()

	logger.Init()
	defer logger.GetLogger().Sync()

	// Обработка флагов командной строки
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	once := flag.Bool("once", false, "один цикл сканирования без UI")
	flag.Parse()

	// Проверяем наличие файла конфигурации
	logger.Info("Проверка наличия файла конфигурации", zap.String("path", *configPath))
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Fatal("Файл конфигурации не найден", zap.String("path", *configPath))
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Ошибка загрузки конфигурации", zap.Error(err))
	}

	// Создаем контекст с возможностью отмены через горутину
	ctx, cancel := context.WithCancel(context.Background())

	// Настраиваем обработку сигналов завершения
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nЗавершение работы...")
		cancel()
		time.Sleep(3 * time.Second) // Даем воркерам время на завершение
		os.Exit(0)
	}()

	// Инициализируем хранилище. Без URL работаем без истории и cooldown.
	var store storage.Storage
	if cfg.Storage.URL != "" {
		influx, err := storage.NewInfluxDBStorage(cfg.Storage)
		if err != nil {
			logger.Fatal("Ошибка инициализации хранилища", zap.Error(err))
		}
		defer influx.Close()
		store = influx
	} else {
		logger.Warn("Хранилище не настроено, история сигналов не сохраняется")
	}

	// Инициализируем клиент биржи
	client, err := exchange.NewBinanceClient(cfg.Binance, cfg.Engine.Indicators.MinCandles)
	if err != nil {
		logger.Fatal("Ошибка инициализации клиента биржи", zap.Error(err))
	}

	// Уведомления в Telegram, если заданы токен и чат
	var notifier notify.Notifier
	if tg := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID); tg.Enabled() {
		notifier = tg
		logger.Info("Telegram-уведомления включены")
	}

	// Собираем движок скоринга и сканер
	analyzer := technical.NewAnalyzer(cfg.Engine.Indicators)
	comp := composer.NewComposer(cfg.Engine.Scoring)
	scan := scanner.New(cfg.Scanner, cfg.Engine.Indicators.MinCandles, client, analyzer, comp, store, notifier)

	if *once {
		runOnce(ctx, scan)
		return
	}

	// Инициализируем UI. Лента стартует с историей из хранилища,
	// чтобы не ждать первого цикла.
	userInterface := ui.NewTermUI(cfg.UI)
	if store != nil {
		seedFeed(ctx, cfg, store, userInterface)
	}

	// Запускаем цикл сканирования в горутине
	go func() {
		// Первый цикл сразу, дальше по таймеру
		runCycle(ctx, scan, userInterface)

		ticker := time.NewTicker(time.Duration(cfg.Scanner.IntervalSeconds) * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runCycle(ctx, scan, userInterface)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Запускаем UI в основном потоке (блокирующий вызов)
	userInterface.Start()
	cancel()
}

// seedFeed наполняет ленту последними сохраненными сигналами
func seedFeed(ctx context.Context, cfg *config.Config, store storage.Storage, userInterface *ui.TermUI) {
	var seed []*models.Signal
	for _, symbol := range cfg.Scanner.Symbols {
		history, err := store.GetSignalHistory(ctx, symbol, 1)
		if err != nil {
			logger.Warn("Не удалось загрузить историю сигналов",
				zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		seed = append(seed, history...)
	}
	if len(seed) > 0 {
		userInterface.UpdateSignals(seed)
	}
}

// runCycle выполняет один цикл сканирования и обновляет ленту UI
func runCycle(ctx context.Context, scan *scanner.Scanner, userInterface *ui.TermUI) {
	signals, err := scan.Scan(ctx)
	if err != nil && ctx.Err() == nil {
		logger.Error("Ошибка цикла сканирования", zap.Error(err))
		return
	}
	if len(signals) > 0 {
		userInterface.UpdateSignals(signals)
	}
}

// runOnce выполняет один цикл и печатает сигналы в stdout
func runOnce(ctx context.Context, scan *scanner.Scanner) {
	signals, err := scan.Scan(ctx)
	if err != nil {
		logger.Fatal("Ошибка цикла сканирования", zap.Error(err))
	}
	for _, s := range signals {
		fmt.Printf("%-12s %-4s %-8s %5.1f  цена %.6g", s.Symbol, s.Timeframe, s.Category, s.Strength, s.CurrentPrice)
		if s.Category != models.SignalNeutral {
			fmt.Printf("  вход %.6g стоп %.6g tp %.6g/%.6g/%.6g r/r %.2f",
				s.Entry, s.StopLoss, s.TakeProfit1, s.TakeProfit2, s.TakeProfit3, s.RiskReward)
		}
		fmt.Println()
	}
}
