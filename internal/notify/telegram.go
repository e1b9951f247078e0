// Package notify отправляет готовые сигналы внешним потребителям.
// Движок скоринга о диспетчере не знает: ему передается готовый Signal.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skalibog/signalscan/pkg/models"
)

// Notifier принимает готовый сигнал
type Notifier interface {
	Send(ctx context.Context, signal *models.Signal) error
}

const telegramBaseURL = "https://api.telegram.org/bot"

// TelegramNotifier отправляет сигналы в чат или канал Telegram
type TelegramNotifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

// NewTelegramNotifier создает нотификатор. При пустом токене или chat_id
// отправка отключена: Send ничего не делает и возвращает nil.
func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled сообщает, настроена ли отправка
func (n *TelegramNotifier) Enabled() bool {
	return n.botToken != "" && n.chatID != ""
}

// Send форматирует сигнал и отправляет его через Bot API
func (n *TelegramNotifier) Send(ctx context.Context, signal *models.Signal) error {
	if !n.Enabled() {
		return nil
	}

	payload := map[string]interface{}{
		"chat_id":                  n.chatID,
		"text":                     FormatSignal(signal),
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации сообщения: %w", err)
	}

	url := telegramBaseURL + n.botToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки в Telegram: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("ошибка разбора ответа Telegram: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("Telegram отклонил сообщение: %s", result.Description)
	}

	return nil
}

// FormatSignal собирает HTML-сообщение по сигналу
func FormatSignal(signal *models.Signal) string {
	var b strings.Builder

	marker := "⚪"
	if signal.Category == models.SignalLong {
		marker = "🟢"
	} else if signal.Category == models.SignalShort {
		marker = "🔴"
	}

	fmt.Fprintf(&b, "%s <b>%s</b> | %s | %s\n", marker, signal.Symbol, signal.Timeframe, signal.Category)
	fmt.Fprintf(&b, "Сила: <b>%.0f</b>/100\n", signal.Strength)
	fmt.Fprintf(&b, "Цена: %s\n", formatPrice(signal.CurrentPrice))

	if signal.Category != models.SignalNeutral {
		fmt.Fprintf(&b, "\nВход: %s\n", formatPrice(signal.Entry))
		fmt.Fprintf(&b, "Стоп: %s (%.2f%%)\n", formatPrice(signal.StopLoss), signal.StopLossPct)
		fmt.Fprintf(&b, "TP1: %s (%.2f%%)\n", formatPrice(signal.TakeProfit1), signal.TakeProfit1Pct)
		fmt.Fprintf(&b, "TP2: %s (%.2f%%)\n", formatPrice(signal.TakeProfit2), signal.TakeProfit2Pct)
		fmt.Fprintf(&b, "TP3: %s\n", formatPrice(signal.TakeProfit3))
		fmt.Fprintf(&b, "R/R: %.2f\n", signal.RiskReward)
	}

	if snap := signal.Snapshot; snap != nil {
		fmt.Fprintf(&b, "\nRSI %.1f | MACD hist %.6f | Объем x%.2f | Покупки %.0f%%",
			snap.RSI, snap.MACDHistogram, snap.VolumeRatio, snap.BuyPressure*100)
	}

	return b.String()
}

// formatPrice печатает цену без хвостовых нулей float-представления
func formatPrice(v float64) string {
	return decimal.NewFromFloat(v).Round(6).String()
}
