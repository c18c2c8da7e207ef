package port

import "risk_monitor/internal/domain/entity"

// VaultFeed exposes the latest protocol-wide stats and a bounded history of
// recent transactions, most recent first.
type VaultFeed interface {
	LatestStats() (entity.AggregateStats, bool)
	RecentTransactions() []entity.TransactionEvent
}

// NotificationFeed exposes a bounded history of user-facing notifications,
// most recent first.
type NotificationFeed interface {
	Recent() []entity.Notification
}
