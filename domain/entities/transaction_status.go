package entities

type EntityStatus string

const (
	StatusPending     EntityStatus = "pending"
	StatusCompleted   EntityStatus = "completed"
	StatusFailed      EntityStatus = "failed"
	StatusExpired     EntityStatus = "expired"
	StatusRefunded    EntityStatus = "refunded"
	StatusChargedBack EntityStatus = "charged_back"
)

// transitions lists every edge of the status machine. completed -> expired
// is the sweep's bookkeeping edge; nothing leaves the other terminal states.
var transitions = map[EntityStatus][]EntityStatus{
	StatusPending:   {StatusCompleted, StatusFailed, StatusExpired, StatusRefunded, StatusChargedBack},
	StatusCompleted: {StatusExpired},
}

func (o EntityStatus) StatusString() string {
	return string(o)
}

func (o EntityStatus) IsPending() bool {
	return o == StatusPending
}

func (o EntityStatus) IsCompleted() bool {
	return o == StatusCompleted
}

func (o EntityStatus) IsFailed() bool {
	return o == StatusFailed
}

func (o EntityStatus) IsExpired() bool {
	return o == StatusExpired
}

// IsTerminal is true for states no automatic event may leave.
func (o EntityStatus) IsTerminal() bool {
	_, ok := transitions[o]
	return !ok
}

func (o EntityStatus) CanTransitionTo(to EntityStatus) bool {
	for _, v := range transitions[o] {
		if v == to {
			return true
		}
	}
	return false
}

// MapGatewayStatus folds a raw processor status onto the machine's states.
func MapGatewayStatus(raw string) EntityStatus {
	switch raw {
	case "approved":
		return StatusCompleted
	case "rejected", "cancelled":
		return StatusFailed
	case "refunded":
		return StatusRefunded
	case "charged_back":
		return StatusChargedBack
	default:
		return StatusPending
	}
}
