package events

// Event types
const (
	TypeUserRegistered   = "user.registered"
	TypeCheckInCompleted = "checkin.completed"
	TypeBadgeAwarded     = "badge.awarded"
)

// UserRegisteredEvent is emitted once an account row exists
type UserRegisteredEvent struct {
	BaseEvent
	Username string `json:"username"`
	Email    string `json:"email"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(userID, username, email string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: newBaseEvent(TypeUserRegistered, userID),
		Username:  username,
		Email:     email,
	}
}

// CheckInCompletedEvent is emitted after a check-in transaction commits
type CheckInCompletedEvent struct {
	BaseEvent
	HotspotID string `json:"hotspot_id"`
	Exp       int64  `json:"exp"`
	Level     int    `json:"level"`
	Reward    int64  `json:"reward"`
}

// NewCheckInCompletedEvent creates a new CheckInCompletedEvent
func NewCheckInCompletedEvent(userID, hotspotID string, exp int64, level int, reward int64) *CheckInCompletedEvent {
	return &CheckInCompletedEvent{
		BaseEvent: newBaseEvent(TypeCheckInCompleted, userID),
		HotspotID: hotspotID,
		Exp:       exp,
		Level:     level,
		Reward:    reward,
	}
}

// BadgeAwardedEvent is emitted for every newly awarded badge
type BadgeAwardedEvent struct {
	BaseEvent
	BadgeName string `json:"badge_name"`
}

// NewBadgeAwardedEvent creates a new BadgeAwardedEvent
func NewBadgeAwardedEvent(userID, badgeName string) *BadgeAwardedEvent {
	return &BadgeAwardedEvent{
		BaseEvent: newBaseEvent(TypeBadgeAwarded, userID),
		BadgeName: badgeName,
	}
}
