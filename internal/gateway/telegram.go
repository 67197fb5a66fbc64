package gateway

import (
	"context"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/common/config"
)

// Telegram adapts the chat boundary onto the Telegram Bot API with long
// polling. A bad token is the one startup error that is allowed to be fatal;
// everything past Run degrades per message.
type Telegram struct {
	logger  *zap.Logger
	bot     *tgbotapi.BotAPI
	handler Handler
	timeout time.Duration
}

// NewTelegram connects to the Telegram Bot API.
func NewTelegram(logger *zap.Logger, cfg *config.TelegramConfig, handler Handler) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	logger = logger.Named("gateway.telegram")
	logger.Info("authorized", zap.String("account", bot.Self.UserName))

	return &Telegram{
		logger:  logger,
		bot:     bot,
		handler: handler,
		timeout: cfg.PollTimeout.Duration(),
	}, nil
}

// Run polls for updates until ctx is cancelled.
func (t *Telegram) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(t.timeout.Seconds())
	updates := t.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			t.dispatch(ctx, update.Message)
		}
	}
}

func (t *Telegram) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	in := Inbound{
		Handle:   msg.From.ID,
		Username: msg.From.UserName,
		Text:     msg.Text,
	}
	if msg.Document != nil {
		data, err := t.download(msg.Document.FileID)
		if err != nil {
			t.logger.Error("failed to download document",
				zap.String("file", msg.Document.FileName),
				zap.Error(err))
		} else {
			in.Document = data
			in.DocumentName = msg.Document.FileName
		}
	}

	reply := t.handler.Handle(ctx, in)
	t.send(msg.Chat.ID, reply)
}

func (t *Telegram) download(fileID string) ([]byte, error) {
	url, err := t.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return io.ReadAll(resp.Body)
}

func (t *Telegram) send(chatID int64, reply Reply) {
	if reply.File != nil {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
			Name:  reply.FileName,
			Bytes: reply.File,
		})
		doc.Caption = reply.Text
		if _, err := t.bot.Send(doc); err != nil {
			t.logger.Error("failed to send document", zap.Error(err))
		}
		return
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	msg.ReplyMarkup = markup(reply.Keyboard)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error("failed to send message", zap.Error(err))
	}
}

func markup(v KeyboardVariant) interface{} {
	rows := MenuRows(v)
	if rows == nil {
		return tgbotapi.NewRemoveKeyboard(false)
	}
	var kbRows [][]tgbotapi.KeyboardButton
	for _, row := range rows {
		var btns []tgbotapi.KeyboardButton
		for _, label := range row {
			btns = append(btns, tgbotapi.NewKeyboardButton(label))
		}
		kbRows = append(kbRows, btns)
	}
	kb := tgbotapi.NewReplyKeyboard(kbRows...)
	kb.ResizeKeyboard = true
	return kb
}
