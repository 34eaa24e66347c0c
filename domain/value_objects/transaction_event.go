package value_objects

import "time"

type TransactionStatusEvent struct {
	TransactionID string    `json:"transaction_id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	BotID         string    `json:"bot_id"`
	ContactID     string    `json:"contact_id"`
	PlanID        string    `json:"plan_id"`
	Gateway       string    `json:"gateway"`
	Amount        int64     `json:"amount"`
	At            time.Time `json:"at"`
}

type SweepReport struct {
	Job       string `json:"job"`
	Scanned   int    `json:"scanned"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}
