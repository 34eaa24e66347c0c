package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"access-system/domain/constants"
	"access-system/domain/entities"
	"access-system/domain/repositories"
	"access-system/domain/value_objects"
	"access-system/errors"
)

// Messenger talks to the Bot API on behalf of every bot in the catalogue.
// Clients are created lazily and cached per token.
type Messenger struct {
	endpoint string
	client   *http.Client
	registry repositories.ILinkRegistry
	logger   *zap.Logger

	mu   sync.Mutex
	bots map[string]*tgbotapi.BotAPI
}

func NewMessenger(endpoint string, timeout time.Duration, registry repositories.ILinkRegistry, logger *zap.Logger) *Messenger {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	return &Messenger{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		registry: registry,
		logger:   logger,
		bots:     map[string]*tgbotapi.BotAPI{},
	}
}

func (m *Messenger) api(bot entities.Bot) (*tgbotapi.BotAPI, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if api, ok := m.bots[bot.Token]; ok {
		return api, nil
	}
	api, err := tgbotapi.NewBotAPIWithClient(bot.Token, m.endpoint, m.client)
	if err != nil {
		return nil, fmt.Errorf("bot %s: %w", bot.ID, err)
	}
	m.bots[bot.Token] = api
	return api, nil
}

func (m *Messenger) SendMessage(ctx context.Context, bot entities.Bot, chatID int64, text string, keyboard value_objects.Keyboard) error {
	api, err := m.api(bot)
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if len(keyboard) > 0 {
		msg.ReplyMarkup = inlineKeyboard(keyboard)
	}

	if _, err = api.Send(msg); err != nil {
		m.logger.With(zap.Error(err), zap.String("bot_id", bot.ID), zap.Int64("chat_id", chatID)).Error(constants.SERVICE_TELEGRAM_ERROR + "send_message")
		return classify(err)
	}
	return nil
}

func inlineKeyboard(keyboard value_objects.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// CreateInviteLink mints a single-use link. Groups known only by their
// public handle are addressed through the handle.
func (m *Messenger) CreateInviteLink(ctx context.Context, bot entities.Bot, chatID int64, username string, expireAt *time.Time) (value_objects.MintedInviteLink, error) {
	api, err := m.api(bot)
	if err != nil {
		return value_objects.MintedInviteLink{}, err
	}

	chat := tgbotapi.ChatConfig{ChatID: chatID}
	if chatID == 0 && username != "" {
		chat = tgbotapi.ChatConfig{SuperGroupUsername: "@" + strings.TrimPrefix(username, "@")}
	}
	cfg := tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:  chat,
		MemberLimit: 1,
	}
	if expireAt != nil {
		cfg.ExpireDate = int(expireAt.Unix())
	}

	resp, err := api.Request(cfg)
	if err != nil {
		m.logger.With(zap.Error(err), zap.String("bot_id", bot.ID), zap.Int64("chat_id", chatID)).Error(constants.SERVICE_TELEGRAM_ERROR + "create_invite_link")
		return value_objects.MintedInviteLink{}, classify(err)
	}

	var link tgbotapi.ChatInviteLink
	if err = json.Unmarshal(resp.Result, &link); err != nil {
		return value_objects.MintedInviteLink{}, err
	}

	minted := value_objects.MintedInviteLink{Link: link.InviteLink, MemberLimit: link.MemberLimit}
	if link.ExpireDate > 0 {
		at := time.Unix(int64(link.ExpireDate), 0)
		minted.ExpireAt = &at
	}

	if m.registry != nil {
		info := value_objects.InviteLinkInfo{Link: minted.Link, ExpireAt: minted.ExpireAt, MemberLimit: minted.MemberLimit}
		if err := m.registry.Save(ctx, bot.ID, chatID, info); err != nil {
			m.logger.With(zap.Error(err), zap.String("bot_id", bot.ID)).Warn("invite_link_registry_save_err")
		}
	}
	return minted, nil
}

// GetInviteLinkInfo answers from the registry of links this engine minted;
// the Bot API offers no lookup by link.
func (m *Messenger) GetInviteLinkInfo(ctx context.Context, bot entities.Bot, chatID int64, link string) (value_objects.InviteLinkInfo, error) {
	if m.registry == nil {
		return value_objects.InviteLinkInfo{}, errors.ErrInviteLinkInfoUnavailable
	}
	return m.registry.Find(ctx, bot.ID, link)
}

// RemoveMember kicks userID out and immediately lifts the ban so the user
// can come back after paying again.
func (m *Messenger) RemoveMember(ctx context.Context, bot entities.Bot, chatID, userID int64) error {
	api, err := m.api(bot)
	if err != nil {
		return err
	}

	member := tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID}
	if _, err = api.Request(tgbotapi.BanChatMemberConfig{ChatMemberConfig: member}); err != nil {
		m.logger.With(zap.Error(err), zap.String("bot_id", bot.ID), zap.Int64("chat_id", chatID), zap.Int64("user_id", userID)).Error(constants.SERVICE_TELEGRAM_ERROR + "ban_chat_member")
		return classify(err)
	}
	if _, err = api.Request(tgbotapi.UnbanChatMemberConfig{ChatMemberConfig: member, OnlyIfBanned: true}); err != nil {
		m.logger.With(zap.Error(err), zap.String("bot_id", bot.ID), zap.Int64("chat_id", chatID), zap.Int64("user_id", userID)).Warn("unban_chat_member_err")
	}
	return nil
}

var rightsMarkers = []string{
	"not enough rights",
	"chat_admin_required",
	"need administrator rights",
	"have no rights",
}

// classify maps Bot API permission failures onto ErrInsufficientRights.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range rightsMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %s", errors.ErrInsufficientRights, err.Error())
		}
	}
	return err
}
