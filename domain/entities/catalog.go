package entities

// Catalog records are owned by the admin application; the engine only
// reads them.

type Bot struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Token              string `json:"-"`
	DefaultGroupChatID int64  `json:"default_group_chat_id"`
}

type Contact struct {
	ID             string `json:"id"`
	BotID          string `json:"bot_id"`
	TelegramUserID int64  `json:"telegram_user_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
}

type Plan struct {
	ID      string `json:"id"`
	BotID   string `json:"bot_id"`
	GroupID string `json:"group_id"`
	Title   string `json:"title"`
	// Price in centavos.
	Price  int64 `json:"price"`
	Active bool  `json:"active"`
}

type Cycle struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Days int    `json:"days"`
}

type Group struct {
	ID    string `json:"id"`
	BotID string `json:"bot_id"`
	Title string `json:"title"`
	// ChatID is zero when the group is only known by its public handle.
	ChatID   int64  `json:"chat_id"`
	Username string `json:"username"`
	Active   bool   `json:"active"`
}

func (g *Group) HasHandle() bool {
	return g.Username != ""
}
