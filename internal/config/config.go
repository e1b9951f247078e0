package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config представляет полную конфигурацию приложения
type Config struct {
	Binance  BinanceConfig  `yaml:"binance"`
	Scanner  ScannerConfig  `yaml:"scanner"`
	Engine   EngineConfig   `yaml:"engine"`
	Storage  StorageConfig  `yaml:"storage"`
	Telegram TelegramConfig `yaml:"telegram"`
	UI       UIConfig       `yaml:"ui"`
}

// BinanceConfig содержит настройки подключения к Binance
type BinanceConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Market    string `yaml:"market"` // spot | futures
	Testnet   bool   `yaml:"testnet"`
}

// ScannerConfig содержит настройки цикла сканирования
type ScannerConfig struct {
	Symbols         []string `yaml:"symbols"`
	Timeframes      []string `yaml:"timeframes"`
	DiscoverTop     int      `yaml:"discover_top"`      // 0 = только symbols из конфига
	MinQuoteVolume  float64  `yaml:"min_quote_volume"`  // фильтр для discover_top
	IntervalSeconds int      `yaml:"interval_seconds"`  // период между циклами
	SymbolTimeoutMS int      `yaml:"symbol_timeout_ms"` // таймаут на один символ
	PauseMS         int      `yaml:"pause_ms"`          // пауза между запросами к API
	Workers         int      `yaml:"workers"`           // размер пула воркеров
	CooldownMinutes int      `yaml:"cooldown_minutes"`  // окно дедупликации по символу
	MinStrength     float64  `yaml:"min_strength"`      // порог отправки сигнала
}

// EngineConfig содержит настройки скорингового движка
type EngineConfig struct {
	Indicators IndicatorConfig `yaml:"indicators"`
	Scoring    ScoringConfig   `yaml:"scoring"`
}

// IndicatorConfig содержит периоды индикаторов
type IndicatorConfig struct {
	RSIPeriod      int     `yaml:"rsi_period"`
	MACDFast       int     `yaml:"macd_fast"`
	MACDSlow       int     `yaml:"macd_slow"`
	MACDSignal     int     `yaml:"macd_signal"`
	BBPeriod       int     `yaml:"bb_period"`
	BBStdDev       float64 `yaml:"bb_stddev"`
	ATRPeriod      int     `yaml:"atr_period"`
	EMAShort       int     `yaml:"ema_short"`
	EMAMedium      int     `yaml:"ema_medium"`
	EMALong        int     `yaml:"ema_long"`
	EMATrend       int     `yaml:"ema_trend"`
	VolumePeriod   int     `yaml:"volume_period"`   // окно среднего объема
	PressureWindow int     `yaml:"pressure_window"` // окно buy pressure
	LevelPeriod    int     `yaml:"level_period"`    // окно поддержки/сопротивления
	MinCandles     int     `yaml:"min_candles"`     // минимум истории для снапшота
}

// ScoringConfig содержит пороги аддитивной модели скоринга.
// Разные варианты исходной системы использовали разные отсечки,
// поэтому все пороги вынесены сюда, а не зашиты в код.
type ScoringConfig struct {
	RSIOversold       float64   `yaml:"rsi_oversold"`
	RSIOverbought     float64   `yaml:"rsi_overbought"`
	VolumeSpike       float64   `yaml:"volume_spike_threshold"`
	VolumeElevated    float64   `yaml:"volume_elevated_threshold"`
	ThresholdLong     float64   `yaml:"threshold_long"`
	ThresholdShort    float64   `yaml:"threshold_short"`
	ATRStopMultiplier float64   `yaml:"atr_stop_multiplier"`
	ATRTPMultipliers  []float64 `yaml:"atr_tp_multipliers"`
}

// StorageConfig содержит настройки хранения сигналов
type StorageConfig struct {
	URL          string `yaml:"url"`
	Token        string `yaml:"token"`
	Organization string `yaml:"organization"`
	Bucket       string `yaml:"bucket"`
}

// TelegramConfig содержит настройки отправки уведомлений
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// UIConfig содержит настройки терминального интерфейса
type UIConfig struct {
	RefreshRateMS int `yaml:"refresh_rate_ms"`
	MaxSignals    int `yaml:"max_signals"`
}

// Load загружает конфигурацию из файла и применяет значения по умолчанию
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("ошибка разбора файла конфигурации: %w", err)
	}

	config.applyDefaults()
	config.applyEnv()

	return &config, nil
}

// applyDefaults выставляет значения по умолчанию для незаполненных полей
func (c *Config) applyDefaults() {
	if c.Binance.Market == "" {
		c.Binance.Market = "spot"
	}
	if len(c.Scanner.Timeframes) == 0 {
		c.Scanner.Timeframes = []string{"1h"}
	}
	if c.Scanner.IntervalSeconds == 0 {
		c.Scanner.IntervalSeconds = 300
	}
	if c.Scanner.SymbolTimeoutMS == 0 {
		c.Scanner.SymbolTimeoutMS = 10000
	}
	if c.Scanner.PauseMS == 0 {
		c.Scanner.PauseMS = 100
	}
	if c.Scanner.Workers == 0 {
		c.Scanner.Workers = 4
	}
	if c.Scanner.MinQuoteVolume == 0 {
		c.Scanner.MinQuoteVolume = 1_000_000
	}

	ind := &c.Engine.Indicators
	if ind.RSIPeriod == 0 {
		ind.RSIPeriod = 14
	}
	if ind.MACDFast == 0 {
		ind.MACDFast = 12
	}
	if ind.MACDSlow == 0 {
		ind.MACDSlow = 26
	}
	if ind.MACDSignal == 0 {
		ind.MACDSignal = 9
	}
	if ind.BBPeriod == 0 {
		ind.BBPeriod = 20
	}
	if ind.BBStdDev == 0 {
		ind.BBStdDev = 2.0
	}
	if ind.ATRPeriod == 0 {
		ind.ATRPeriod = 14
	}
	if ind.EMAShort == 0 {
		ind.EMAShort = 9
	}
	if ind.EMAMedium == 0 {
		ind.EMAMedium = 21
	}
	if ind.EMALong == 0 {
		ind.EMALong = 50
	}
	if ind.EMATrend == 0 {
		ind.EMATrend = 200
	}
	if ind.VolumePeriod == 0 {
		ind.VolumePeriod = 20
	}
	if ind.PressureWindow == 0 {
		ind.PressureWindow = 4
	}
	if ind.LevelPeriod == 0 {
		ind.LevelPeriod = 20
	}
	if ind.MinCandles == 0 {
		ind.MinCandles = ind.EMATrend
	}

	sc := &c.Engine.Scoring
	if sc.RSIOversold == 0 {
		sc.RSIOversold = 30
	}
	if sc.RSIOverbought == 0 {
		sc.RSIOverbought = 70
	}
	if sc.VolumeSpike == 0 {
		sc.VolumeSpike = 2.0
	}
	if sc.VolumeElevated == 0 {
		sc.VolumeElevated = 1.5
	}
	if sc.ThresholdLong == 0 {
		sc.ThresholdLong = 65
	}
	if sc.ThresholdShort == 0 {
		sc.ThresholdShort = 35
	}
	if sc.ATRStopMultiplier == 0 {
		sc.ATRStopMultiplier = 1.5
	}
	if len(sc.ATRTPMultipliers) == 0 {
		sc.ATRTPMultipliers = []float64{1, 2, 3}
	}

	if c.UI.RefreshRateMS == 0 {
		c.UI.RefreshRateMS = 1000
	}
	if c.UI.MaxSignals == 0 {
		c.UI.MaxSignals = 30
	}
}

// applyEnv подставляет секреты из окружения, если они не заданы в файле
func (c *Config) applyEnv() {
	if c.Binance.APIKey == "" {
		c.Binance.APIKey = os.Getenv("BINANCE_API_KEY")
	}
	if c.Binance.APISecret == "" {
		c.Binance.APISecret = os.Getenv("BINANCE_API_SECRET")
	}
	if c.Telegram.BotToken == "" {
		c.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	if c.Telegram.ChatID == "" {
		c.Telegram.ChatID = os.Getenv("TELEGRAM_CHAT_ID")
	}
	if c.Storage.Token == "" {
		c.Storage.Token = os.Getenv("INFLUXDB_TOKEN")
	}
}
