package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"glycofy/internal/apiclient"
	"glycofy/internal/app"
	"glycofy/internal/config"
	"glycofy/internal/dates"
	"glycofy/internal/metrics"
	"glycofy/internal/shopping"
	"glycofy/internal/summary"
)

// Sender is the part of the Telegram API the bot talks through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Commands is what the bot can ask the application to do.
type Commands interface {
	LoadWeek(ctx context.Context, anchor string) (app.WeekView, error)
	ExportGrocery(format shopping.Format) (shopping.File, error)
	LoadSummary(ctx context.Context, from, to string) (summary.Summary, error)
	StravaStatus(ctx context.Context) app.StravaState
	SyncStrava(ctx context.Context, replace bool) (apiclient.SyncResult, error)
}

const commandTimeout = time.Minute

// Bot is a chat front end over the application commands.
type Bot struct {
	api          Sender
	cmds         Commands
	metricsStore *metrics.Store
	cfg          *config.Config
	logger       *zap.Logger
	now          func() time.Time
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, cmds Commands, metricsStore *metrics.Store, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info("webhook set", zap.String("description", resp.Description))

	return newBot(api, cfg, cmds, metricsStore, logger), nil
}

func newBot(api Sender, cfg *config.Config, cmds Commands, metricsStore *metrics.Store, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{api: api, cmds: cmds, metricsStore: metricsStore, cfg: cfg, logger: logger, now: time.Now}
}

// RegisterHandlers mounts the webhook and health endpoints on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("error parsing update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if update.Message.From.ID != b.cfg.TelegramAllowUserID {
		b.logger.Warn("unauthorized access attempt",
			zap.Int64("user_id", update.Message.From.ID),
			zap.String("username", update.Message.From.UserName))
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd, args := msg.Command(), strings.Fields(msg.CommandArguments())
	switch cmd {
	case "week":
		b.handleWeek(ctx, msg.Chat.ID, args)
	case "grocery":
		b.handleGrocery(msg.Chat.ID, args)
	case "summary":
		b.handleSummary(ctx, msg.Chat.ID, args)
	case "strava":
		b.handleStrava(ctx, msg.Chat.ID)
	case "sync":
		b.handleSync(ctx, msg.Chat.ID, args)
	case "metrics":
		b.handleMetricsRequest(ctx, msg)
	default:
		b.sendMarkdown(msg.Chat.ID, helpText)
	}
}

const helpText = "*Glycofy*\n\n" +
	"/week `[YYYY-MM-DD]` weekly plan and grocery list\n" +
	"/grocery `[txt|csv|xlsx]` export the loaded week's groceries\n" +
	"/summary `[from] [to]` training summary (default last 7 days)\n" +
	"/strava connection status\n" +
	"/sync `[replace]` import from Strava"

const supersededText = "↪️ _Superseded by a newer /week request._"

func (b *Bot) handleWeek(ctx context.Context, chatID int64, args []string) {
	anchor := dates.DaysAgo(b.now(), 0)
	if len(args) > 0 {
		anchor = args[0]
	}

	sent, err := b.sendMarkdown(chatID, "⏳ *Loading week...*")
	if err != nil {
		return
	}

	view, err := b.cmds.LoadWeek(ctx, anchor)
	if errors.Is(err, app.ErrStale) {
		b.editMarkdown(chatID, sent.MessageID, supersededText)
		return
	}
	if err != nil {
		b.editMarkdown(chatID, sent.MessageID, errorText("loading week", err))
		return
	}

	planText, groceryText := formatWeekMarkdownParts(view)
	b.editMarkdown(chatID, sent.MessageID, planText)
	b.sendMarkdown(chatID, groceryText)
}

func (b *Bot) handleGrocery(chatID int64, args []string) {
	format := shopping.FormatText
	if len(args) > 0 {
		f, err := shopping.ParseFormat(args[0])
		if err != nil {
			b.sendMarkdown(chatID, errorText("exporting groceries", err))
			return
		}
		format = f
	}

	file, err := b.cmds.ExportGrocery(format)
	if err != nil {
		b.sendMarkdown(chatID, errorText("exporting groceries", err))
		return
	}

	if format == shopping.FormatText {
		b.api.Send(tgbotapi.NewMessage(chatID, string(file.Data)))
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: file.Filename, Bytes: file.Data})
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Warn("failed to send document", zap.String("file", file.Filename), zap.Error(err))
	}
}

func (b *Bot) handleSummary(ctx context.Context, chatID int64, args []string) {
	now := b.now()
	to := dates.DaysAgo(now, 0)
	from := dates.DaysAgo(now, 6)
	if len(args) > 0 {
		from = args[0]
	}
	if len(args) > 1 {
		to = args[1]
	}

	s, err := b.cmds.LoadSummary(ctx, from, to)
	if errors.Is(err, app.ErrStale) {
		return
	}
	if err != nil {
		b.sendMarkdown(chatID, errorText("loading summary", err))
		return
	}
	b.sendMarkdown(chatID, formatSummaryMarkdown(s))
}

func (b *Bot) handleStrava(ctx context.Context, chatID int64) {
	var text string
	switch b.cmds.StravaStatus(ctx) {
	case app.StravaConnected:
		text = "🟢 Strava is *connected*"
	case app.StravaDisconnected:
		text = "⚪ Strava is *not connected*"
	default:
		text = "❔ Strava status *unknown*"
	}
	b.sendMarkdown(chatID, text)
}

func (b *Bot) handleSync(ctx context.Context, chatID int64, args []string) {
	replace := len(args) > 0 && args[0] == "replace"
	res, err := b.cmds.SyncStrava(ctx, replace)
	if err != nil {
		b.sendMarkdown(chatID, errorText("syncing Strava", err))
		return
	}
	b.sendMarkdown(chatID, fmt.Sprintf("✅ *Strava synced*\nInserted: %d\nUpdated: %d\nTotal: %d", res.Inserted, res.Updated, res.Total))
}

func (b *Bot) handleMetricsRequest(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.sendMarkdown(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}
	b.handleMetricsCommand(ctx, msg.Chat.ID)
}

func (b *Bot) handleMetricsCommand(ctx context.Context, chatID int64) {
	if b.metricsStore == nil {
		b.sendMarkdown(chatID, "_Metrics are disabled_")
		return
	}
	usage, err := b.metricsStore.GetDailyUsage(ctx, 7)
	if err != nil {
		b.api.Send(tgbotapi.NewMessage(chatID, "❌ Error fetching metrics."))
		return
	}
	b.sendMarkdown(chatID, formatMetricsMarkdown(usage, metrics.GetSysHealth(filepath.Dir(b.cfg.DBPath))))
}

func (b *Bot) sendMarkdown(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return sent, err
}

func (b *Bot) editMarkdown(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
