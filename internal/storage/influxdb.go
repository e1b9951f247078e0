// internal/storage/influxdb.go
package storage

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/skalibog/signalscan/internal/config"
	"github.com/skalibog/signalscan/pkg/models"
)

// Storage описывает append-only хранилище сигналов. Движок скоринга о нем не знает:
// хранилищем владеет сканер, который пишет сигналы и проверяет cooldown.
type Storage interface {
	SaveSignal(ctx context.Context, signal *models.Signal) error
	GetSignalHistory(ctx context.Context, symbol string, limit int) ([]*models.Signal, error)
	// LastSignalAt возвращает время последнего сигнала по символу внутри окна.
	// found=false, если сигналов в окне не было.
	LastSignalAt(ctx context.Context, symbol string, window time.Duration) (time.Time, bool, error)
	Close()
}

// InfluxDBStorage реализует интерфейс Storage с использованием InfluxDB
type InfluxDBStorage struct {
	client   influxdb2.Client
	queryAPI api.QueryAPI
	writeAPI api.WriteAPI
	org      string
	bucket   string
}

// NewInfluxDBStorage создает новое хранилище InfluxDB
func NewInfluxDBStorage(cfg config.StorageConfig) (*InfluxDBStorage, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	// Проверка соединения
	health, err := client.Health(context.Background())
	if err != nil {
		return nil, fmt.Errorf("ошибка соединения с InfluxDB: %w", err)
	}
	if health == nil || health.Status != "pass" {
		return nil, fmt.Errorf("InfluxDB не в состоянии 'pass': %+v", health)
	}

	return &InfluxDBStorage{
		client:   client,
		queryAPI: client.QueryAPI(cfg.Organization),
		writeAPI: client.WriteAPI(cfg.Organization, cfg.Bucket),
		org:      cfg.Organization,
		bucket:   cfg.Bucket,
	}, nil
}

// Close закрывает соединение с базой данных
func (s *InfluxDBStorage) Close() {
	s.writeAPI.Flush()
	s.client.Close()
}

// SaveSignal сохраняет сигнал. Ключ: символ + время, запись только добавляется
func (s *InfluxDBStorage) SaveSignal(ctx context.Context, signal *models.Signal) error {
	point := influxdb2.NewPoint(
		"signals",
		map[string]string{
			"symbol":    signal.Symbol,
			"timeframe": signal.Timeframe.String(),
			"category":  string(signal.Category),
		},
		map[string]interface{}{
			"strength":    signal.Strength,
			"price":       signal.CurrentPrice,
			"entry":       signal.Entry,
			"stop_loss":   signal.StopLoss,
			"tp1":         signal.TakeProfit1,
			"tp2":         signal.TakeProfit2,
			"tp3":         signal.TakeProfit3,
			"risk_reward": signal.RiskReward,
		},
		signal.Timestamp,
	)

	s.writeAPI.WritePoint(point)
	s.writeAPI.Flush()

	return nil
}

// GetSignalHistory получает историю сигналов по символу
func (s *InfluxDBStorage) GetSignalHistory(ctx context.Context, symbol string, limit int) ([]*models.Signal, error) {
	query := fmt.Sprintf(`
		from(bucket: "%s")
			|> range(start: -30d)
			|> filter(fn: (r) => r._measurement == "signals")
			|> filter(fn: (r) => r.symbol == "%s")
			|> pivot(rowKey:["_time"], columnKey: ["_field"], valueColumn: "_value")
			|> sort(columns: ["_time"], desc: true)
			|> limit(n: %d)
	`, s.bucket, symbol, limit)

	result, err := s.queryAPI.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса истории сигналов: %w", err)
	}

	var signals []*models.Signal
	for result.Next() {
		record := result.Record()

		category, _ := record.ValueByKey("category").(string)
		timeframe, _ := record.ValueByKey("timeframe").(string)
		strength, _ := record.ValueByKey("strength").(float64)
		price, _ := record.ValueByKey("price").(float64)
		entry, _ := record.ValueByKey("entry").(float64)
		stopLoss, _ := record.ValueByKey("stop_loss").(float64)
		tp1, _ := record.ValueByKey("tp1").(float64)
		tp2, _ := record.ValueByKey("tp2").(float64)
		tp3, _ := record.ValueByKey("tp3").(float64)
		riskReward, _ := record.ValueByKey("risk_reward").(float64)

		signals = append(signals, &models.Signal{
			Symbol:       symbol,
			Timeframe:    models.Timeframe(timeframe),
			Timestamp:    record.Time(),
			Category:     models.SignalCategory(category),
			Strength:     strength,
			CurrentPrice: price,
			Entry:        entry,
			StopLoss:     stopLoss,
			TakeProfit1:  tp1,
			TakeProfit2:  tp2,
			TakeProfit3:  tp3,
			RiskReward:   riskReward,
		})
	}

	if result.Err() != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", result.Err())
	}

	return signals, nil
}

// LastSignalAt ищет последний сигнал по символу внутри скользящего окна.
// Используется сканером для cooldown: символ, по которому сигнал уже был,
// пропускается до истечения окна.
func (s *InfluxDBStorage) LastSignalAt(ctx context.Context, symbol string, window time.Duration) (time.Time, bool, error) {
	query := fmt.Sprintf(`
		from(bucket: "%s")
			|> range(start: -%ds)
			|> filter(fn: (r) => r._measurement == "signals")
			|> filter(fn: (r) => r.symbol == "%s")
			|> filter(fn: (r) => r._field == "strength")
			|> sort(columns: ["_time"], desc: true)
			|> limit(n: 1)
	`, s.bucket, int(window.Seconds()), symbol)

	result, err := s.queryAPI.Query(ctx, query)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("ошибка запроса последнего сигнала: %w", err)
	}

	if result.Next() {
		return result.Record().Time(), true, nil
	}
	if result.Err() != nil {
		return time.Time{}, false, fmt.Errorf("ошибка при обработке результатов: %w", result.Err())
	}

	return time.Time{}, false, nil
}
