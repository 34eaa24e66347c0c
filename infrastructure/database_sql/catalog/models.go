package catalog

import (
	"github.com/spf13/cast"

	"access-system/domain/entities"
)

// Telegram ids are stored as text by the admin application.

type botModel struct {
	ID                 string `gorm:"column:id;primaryKey"`
	Name               string `gorm:"column:name"`
	Token              string `gorm:"column:token"`
	DefaultGroupChatID string `gorm:"column:default_group_chat_id"`
}

func (botModel) TableName() string { return "bots" }

type contactModel struct {
	ID             string `gorm:"column:id;primaryKey"`
	BotID          string `gorm:"column:bot_id"`
	TelegramUserID string `gorm:"column:telegram_user_id"`
	Name           string `gorm:"column:name"`
	Email          string `gorm:"column:email"`
}

func (contactModel) TableName() string { return "contacts" }

type planModel struct {
	ID      string `gorm:"column:id;primaryKey"`
	BotID   string `gorm:"column:bot_id"`
	GroupID string `gorm:"column:group_id"`
	Title   string `gorm:"column:title"`
	Price   int64  `gorm:"column:price"`
	Active  bool   `gorm:"column:active"`
}

func (planModel) TableName() string { return "plans" }

type cycleModel struct {
	ID   string `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name"`
	Days int    `gorm:"column:days"`
}

func (cycleModel) TableName() string { return "cycles" }

type groupModel struct {
	ID       string `gorm:"column:id;primaryKey"`
	BotID    string `gorm:"column:bot_id"`
	Title    string `gorm:"column:title"`
	ChatID   string `gorm:"column:chat_id"`
	Username string `gorm:"column:username"`
	Active   bool   `gorm:"column:active"`
}

func (groupModel) TableName() string { return "groups" }

func (m botModel) toEntity() (*entities.Bot, error) {
	chatID, err := optionalInt64(m.DefaultGroupChatID)
	if err != nil {
		return nil, err
	}
	return &entities.Bot{ID: m.ID, Name: m.Name, Token: m.Token, DefaultGroupChatID: chatID}, nil
}

func (m contactModel) toEntity() (*entities.Contact, error) {
	userID, err := optionalInt64(m.TelegramUserID)
	if err != nil {
		return nil, err
	}
	return &entities.Contact{ID: m.ID, BotID: m.BotID, TelegramUserID: userID, Name: m.Name, Email: m.Email}, nil
}

func (m planModel) toEntity() *entities.Plan {
	return &entities.Plan{ID: m.ID, BotID: m.BotID, GroupID: m.GroupID, Title: m.Title, Price: m.Price, Active: m.Active}
}

func (m cycleModel) toEntity() *entities.Cycle {
	return &entities.Cycle{ID: m.ID, Name: m.Name, Days: m.Days}
}

func (m groupModel) toEntity() (*entities.Group, error) {
	chatID, err := optionalInt64(m.ChatID)
	if err != nil {
		return nil, err
	}
	return &entities.Group{
		ID:       m.ID,
		BotID:    m.BotID,
		Title:    m.Title,
		ChatID:   chatID,
		Username: normalizeHandle(m.Username),
		Active:   m.Active,
	}, nil
}

func optionalInt64(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	return cast.ToInt64E(v)
}

// normalizeHandle accepts "@name", "t.me/name" and bare handles.
func normalizeHandle(v string) string {
	for _, prefix := range []string{"https://t.me/", "http://t.me/", "t.me/", "@"} {
		if len(v) >= len(prefix) && v[:len(prefix)] == prefix {
			return v[len(prefix):]
		}
	}
	return v
}
