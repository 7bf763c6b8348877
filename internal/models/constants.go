package models

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusDeclined  = "declined"
	StatusOccupied  = "occupied"
	StatusCompleted = "completed"
)

const (
	// PendingDecisionTimeout — сколько заявка ждет решения администратора
	PendingDecisionTimeout = 3 * time.Minute

	// AvailabilityLookahead окно, в котором будущая бронь блокирует столик
	AvailabilityLookahead = 60 * time.Minute

	// DefaultSweepInterval период фонового отзыва просроченных заявок
	DefaultSweepInterval = 10 * time.Second

	// AutoDeclineReason причина для автоматически отклоненных заявок
	AutoDeclineReason = "Automatic cancellation: No response from administrator."

	// DefaultSessionTTL время жизни сессии администратора
	DefaultSessionTTL = 24 * time.Hour

	// LoginRateLimitAttempts количество попыток входа в окне
	LoginRateLimitAttempts = 10

	// LoginRateLimitWindow окно ограничения попыток входа
	LoginRateLimitWindow = time.Minute

	// ExportQueueSize размер очереди воркера экспорта
	ExportQueueSize = 64
)
