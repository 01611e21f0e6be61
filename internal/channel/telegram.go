// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package channel adapts chat transports to the response pipeline. The
// Telegram adapter long-polls the update feed, feeds each message through
// the pipeline, and delivers the result respecting the platform's message
// size limit.
package channel

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/pepperlabs/pepperbot/internal/pipeline"
)

// Telegram caps messages at 4096 chars; splitting at 4000 leaves headroom.
const maxMessageLen = 4000

// TelegramBot is the slice of the bot API the adapter uses. Narrowed to an
// interface so tests can substitute a recorder.
type TelegramBot interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetSelf() tgbotapi.User
}

// tgBotWrapper adapts tgbotapi.BotAPI to the TelegramBot interface.
type tgBotWrapper struct {
	bot *tgbotapi.BotAPI
}

func (w *tgBotWrapper) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return w.bot.GetUpdatesChan(config)
}

func (w *tgBotWrapper) StopReceivingUpdates() {
	w.bot.StopReceivingUpdates()
}

func (w *tgBotWrapper) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return w.bot.Send(c)
}

func (w *tgBotWrapper) GetSelf() tgbotapi.User {
	return w.bot.Self
}

// BotFactory creates TelegramBot instances; tests supply their own.
type BotFactory func(token string) (TelegramBot, error)

var defaultBotFactory BotFactory = func(token string) (TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &tgBotWrapper{bot: bot}, nil
}

// TelegramChannel connects the pipeline to Telegram.
type TelegramChannel struct {
	token       string
	pollTimeout int
	bot         TelegramBot
	pipeline    *pipeline.Pipeline
	botFactory  BotFactory
	cancel      context.CancelFunc
}

// NewTelegramChannel creates the production adapter.
func NewTelegramChannel(token string, pollTimeoutSeconds int, p *pipeline.Pipeline) (*TelegramChannel, error) {
	return NewTelegramChannelWithFactory(token, pollTimeoutSeconds, p, defaultBotFactory)
}

// NewTelegramChannelWithFactory creates a TelegramChannel with a custom bot
// factory (for testing).
func NewTelegramChannelWithFactory(token string, pollTimeoutSeconds int, p *pipeline.Pipeline, factory BotFactory) (*TelegramChannel, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}
	if pollTimeoutSeconds <= 0 {
		pollTimeoutSeconds = 30
	}
	return &TelegramChannel{
		token:       token,
		pollTimeout: pollTimeoutSeconds,
		pipeline:    p,
		botFactory:  factory,
	}, nil
}

// Start authorizes the bot and begins consuming updates until ctx ends.
func (t *TelegramChannel) Start(ctx context.Context) error {
	bot, err := t.botFactory(t.token)
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}
	t.bot = bot
	log.WithField("username", bot.GetSelf().UserName).Info("Telegram bot authorized")

	ctx, t.cancel = context.WithCancel(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.pollTimeout
	updates := t.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case update := <-updates:
				if update.Message == nil {
					continue
				}
				t.handleMessage(ctx, update.Message)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Telegram polling started")
	return nil
}

// Stop halts polling.
func (t *TelegramChannel) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	if t.bot != nil {
		t.bot.StopReceivingUpdates()
	}
	log.Info("Telegram channel stopped")
}

// handleMessage runs one update through the pipeline and sends the reply.
// A nil delivery plan means the pipeline chose silence; nothing is sent.
func (t *TelegramChannel) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := extractQuery(msg)
	if text == "" {
		return
	}

	// The typing indicator covers generation latency; errors here are
	// cosmetic and ignored.
	_, _ = t.bot.Send(tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatTyping))

	// Channel posts carry no sender; the chat ID stands in so rate limiting
	// and deduplication still apply per channel.
	userID := strconv.FormatInt(msg.Chat.ID, 10)
	if msg.From != nil {
		userID = strconv.FormatInt(msg.From.ID, 10)
	}

	reply := t.pipeline.Process(ctx, pipeline.Message{
		UserID:         userID,
		ConversationID: strconv.FormatInt(msg.Chat.ID, 10),
		Text:           text,
	})
	if reply == nil {
		return
	}

	if err := t.send(msg.Chat.ID, reply.Message); err != nil {
		log.WithError(err).Error("Failed to send telegram reply")
	}
}

// extractQuery pulls the question out of an update. The /ask command is an
// alias for asking directly; other commands are not ours to answer.
func extractQuery(msg *tgbotapi.Message) string {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return ""
	}
	if msg.IsCommand() {
		if msg.Command() != "ask" {
			return ""
		}
		return strings.TrimSpace(msg.CommandArguments())
	}
	return text
}

// send delivers text, splitting at newline boundaries under the platform
// limit.
func (t *TelegramChannel) send(chatID int64, text string) error {
	for _, chunk := range splitMessage(text, maxMessageLen) {
		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			return fmt.Errorf("send telegram message: %w", err)
		}
	}
	return nil
}

// splitMessage cuts text into chunks of at most maxLen, preferring the last
// newline before the limit.
func splitMessage(text string, maxLen int) []string {
	var chunks []string
	for len(text) > 0 {
		chunk := text
		if len(chunk) > maxLen {
			idx := strings.LastIndex(chunk[:maxLen], "\n")
			if idx > 0 {
				chunk = chunk[:idx]
			} else {
				chunk = chunk[:maxLen]
			}
		}
		text = strings.TrimLeft(text[len(chunk):], "\n")
		chunks = append(chunks, chunk)
	}
	return chunks
}
