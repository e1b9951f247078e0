package ui

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/skalibog/signalscan/internal/analysis/composer"
	"github.com/skalibog/signalscan/internal/config"
	"github.com/skalibog/signalscan/pkg/logger"
	"github.com/skalibog/signalscan/pkg/models"
)

// Стили UI
var (
	primaryColor = lipgloss.Color("#0077cc")
	borderColor  = lipgloss.Color("#333333")
	longColor    = lipgloss.Color("#33cc33")
	shortColor   = lipgloss.Color("#cc3300")
	neutralColor = lipgloss.Color("#cccc00")

	appStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(primaryColor).
			Padding(0, 1).
			Align(lipgloss.Center)
	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ffffff")).
				Background(borderColor).
				Padding(0, 1)
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999")).
			Padding(0, 1)
)

// TermUI представляет терминальный интерфейс ленты сигналов
type TermUI struct {
	config       config.UIConfig
	signals      []*models.Signal
	signalsMutex sync.RWMutex
	logs         []string
	logsMutex    sync.RWMutex
	program      *tea.Program
	done         chan struct{}
	closeOnce    sync.Once
	width        int
	height       int
}

// Сообщение для обновления UI
type refreshMsg struct{}

// bubbleModel - модель для bubbletea
type bubbleModel struct {
	ui *TermUI
}

// NewTermUI создает терминальный интерфейс
func NewTermUI(cfg config.UIConfig) *TermUI {
	ui := &TermUI{
		config: cfg,
		logs:   []string{"signalscan запущен. Ожидание первого цикла..."},
		done:   make(chan struct{}),
		width:  120,
		height: 40,
	}

	// Таймер подтягивает логи текущей сессии из JSON-файла
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.RefreshRateMS) * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ui.done:
				return
			case <-ticker.C:
			}

			if err := ui.loadLogsFromFile(); err != nil {
				logger.Warn("Ошибка загрузки логов", zap.Error(err))
			}
			if ui.program != nil {
				ui.program.Send(refreshMsg{})
			}
		}
	}()

	return ui
}

// Start запускает UI, блокирующий вызов
func (ui *TermUI) Start() {
	model := bubbleModel{ui: ui}
	ui.program = tea.NewProgram(model, tea.WithAltScreen())

	if _, err := ui.program.Run(); err != nil {
		fmt.Printf("Ошибка запуска UI: %v\n", err)
	}
	ui.Close()
}

// Close останавливает фоновое обновление логов. Повторные вызовы безопасны.
func (ui *TermUI) Close() {
	ui.closeOnce.Do(func() {
		close(ui.done)
	})
}

// UpdateSignals обновляет ленту. Сигналы сортируются по силе отклонения
// от нейтральной зоны, самые выраженные сверху.
func (ui *TermUI) UpdateSignals(signals []*models.Signal) {
	sorted := make([]*models.Signal, len(signals))
	copy(sorted, signals)
	sort.Slice(sorted, func(i, j int) bool {
		return deviation(sorted[i]) > deviation(sorted[j])
	})
	if len(sorted) > ui.config.MaxSignals {
		sorted = sorted[:ui.config.MaxSignals]
	}

	ui.signalsMutex.Lock()
	ui.signals = sorted
	ui.signalsMutex.Unlock()

	if ui.program != nil {
		ui.program.Send(refreshMsg{})
	}
}

// deviation возвращает отклонение силы от нейтральной базы скоринга
func deviation(s *models.Signal) float64 {
	d := s.Strength - composer.BaseScore
	if d < 0 {
		return -d
	}
	return d
}

// loadLogsFromFile читает JSON-лог zap и форматирует строки для панели логов
func (ui *TermUI) loadLogsFromFile() error {
	file, err := os.Open(logger.JSONLogFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var logs []string

	for scanner.Scan() {
		line := scanner.Text()

		var zapLog map[string]interface{}
		if err := json.Unmarshal([]byte(line), &zapLog); err != nil {
			logs = append(logs, line)
			continue
		}

		level, _ := zapLog["level"].(string)
		ts, _ := zapLog["ts"].(string)
		msg, _ := zapLog["msg"].(string)

		timestamp := ""
		if t, err := time.Parse("02.01.2006 - 15:04:05.000Z07:00", ts); err == nil {
			timestamp = t.Format("15:04:05")
		}

		formatted := fmt.Sprintf("[%s] [%s] %s", timestamp, strings.ToUpper(level), msg)
		for k, v := range zapLog {
			if k != "level" && k != "ts" && k != "msg" && k != "caller" {
				formatted += fmt.Sprintf(" (%s: %v)", k, v)
			}
		}
		logs = append(logs, formatted)

		if len(logs) > 50 {
			logs = logs[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	ui.logsMutex.Lock()
	defer ui.logsMutex.Unlock()
	if len(logs) > 0 {
		ui.logs = logs
	}

	return nil
}

// Методы для bubbletea
func (m bubbleModel) Init() tea.Cmd {
	return nil
}

func (m bubbleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.ui.width = msg.Width
		m.ui.height = msg.Height

	case refreshMsg:
		// Просто перерисовываем
	}

	return m, nil
}

func (m bubbleModel) View() string {
	m.ui.signalsMutex.RLock()
	m.ui.logsMutex.RLock()
	defer m.ui.signalsMutex.RUnlock()
	defer m.ui.logsMutex.RUnlock()

	title := titleStyle.Render("signalscan - лента торговых сигналов")
	signals := renderSignalsSection(m.ui.signals)
	logs := renderLogsSection(m.ui.logs)
	footer := footerStyle.Render("Клавиши: Q - выход")

	return appStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			signals,
			"\n",
			logs,
			"\n",
			footer,
		),
	)
}

func renderSignalsSection(signals []*models.Signal) string {
	header := sectionHeaderStyle.Render("СИГНАЛЫ")
	content := strings.Builder{}

	if len(signals) == 0 {
		content.WriteString("  Ожидание данных...\n")
	} else {
		for _, s := range signals {
			line := fmt.Sprintf("  %-12s %-4s %s %3.0f  Цена: %-12.6g",
				s.Symbol, s.Timeframe, categoryText(s.Category), s.Strength, s.CurrentPrice)
			if s.Category != models.SignalNeutral {
				line += fmt.Sprintf("  Вход: %.6g  Стоп: %.6g  TP2: %.6g  R/R: %.2f",
					s.Entry, s.StopLoss, s.TakeProfit2, s.RiskReward)
			}
			content.WriteString(line + "\n")
		}
	}

	return sectionStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			content.String(),
		),
	)
}

func renderLogsSection(logs []string) string {
	header := sectionHeaderStyle.Render("ЛОГИ")
	content := strings.Builder{}

	maxLogsToShow := 12
	start := 0
	if len(logs) > maxLogsToShow {
		start = len(logs) - maxLogsToShow
	}

	for _, log := range logs[start:] {
		switch {
		case strings.Contains(log, "[ERROR]"):
			log = lipgloss.NewStyle().Foreground(shortColor).Render(log)
		case strings.Contains(log, "[WARN]"):
			log = lipgloss.NewStyle().Foreground(neutralColor).Render(log)
		case strings.Contains(log, "[INFO]"):
			log = lipgloss.NewStyle().Foreground(longColor).Render(log)
		}
		content.WriteString("  " + log + "\n")
	}

	return sectionStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			content.String(),
		),
	)
}

func categoryText(category models.SignalCategory) string {
	var style lipgloss.Style
	switch category {
	case models.SignalLong:
		style = lipgloss.NewStyle().Foreground(longColor).Bold(true)
	case models.SignalShort:
		style = lipgloss.NewStyle().Foreground(shortColor).Bold(true)
	default:
		style = lipgloss.NewStyle().Foreground(neutralColor)
	}
	return style.Render(fmt.Sprintf("%-7s", category))
}
