package service

import (
	"sync"

	"risk_monitor/internal/app/port"
	"risk_monitor/internal/domain/entity"
)

// VaultFeedService demultiplexes vault-related channel messages for the UI:
// a latest-value slot for the protocol-wide stats and a bounded
// most-recent-first buffer of transactions. Unknown message types are
// ignored so the data source can introduce new ones freely.
type VaultFeedService struct {
	logger   port.Logger
	capacity int

	mu           sync.RWMutex
	latestStats  *entity.AggregateStats
	transactions []entity.TransactionEvent
}

// NewVaultFeed creates a vault feed with the given transaction history cap.
func NewVaultFeed(capacity int, logger port.Logger) *VaultFeedService {
	return &VaultFeedService{
		logger:   logger,
		capacity: capacity,
	}
}

// HandleMessage ingests one channel message.
func (f *VaultFeedService) HandleMessage(msg entity.ChannelMessage) {
	switch msg.Type {
	case entity.MessageTypeAggregateStats:
		var stats entity.AggregateStats
		if err := json.Unmarshal(msg.Data, &stats); err != nil {
			f.logger.Warn("Dropping unparsable aggregate stats", "error", err)
			return
		}
		f.mu.Lock()
		f.latestStats = &stats
		f.mu.Unlock()

	case entity.MessageTypeNewTransaction:
		var tx entity.TransactionEvent
		if err := json.Unmarshal(msg.Data, &tx); err != nil {
			f.logger.Warn("Dropping unparsable transaction event", "error", err)
			return
		}
		f.mu.Lock()
		f.transactions = append([]entity.TransactionEvent{tx}, f.transactions...)
		if len(f.transactions) > f.capacity {
			f.transactions = f.transactions[:f.capacity]
		}
		f.mu.Unlock()
	}
}

// LatestStats returns the most recent aggregate stats, if any arrived yet.
func (f *VaultFeedService) LatestStats() (entity.AggregateStats, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.latestStats == nil {
		return entity.AggregateStats{}, false
	}
	return *f.latestStats, true
}

// RecentTransactions returns a copy of the buffered transactions, most
// recent first.
func (f *VaultFeedService) RecentTransactions() []entity.TransactionEvent {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]entity.TransactionEvent, len(f.transactions))
	copy(out, f.transactions)
	return out
}

var _ port.VaultFeed = (*VaultFeedService)(nil)

// NotificationFeedService buffers user-facing notifications, most recent
// first, with a fixed capacity; the oldest entries are dropped first.
type NotificationFeedService struct {
	logger   port.Logger
	capacity int

	mu            sync.RWMutex
	notifications []entity.Notification
}

// NewNotificationFeed creates a notification feed with the given cap.
func NewNotificationFeed(capacity int, logger port.Logger) *NotificationFeedService {
	return &NotificationFeedService{
		logger:   logger,
		capacity: capacity,
	}
}

// HandleMessage ingests one channel message; non-notification types are ignored.
func (f *NotificationFeedService) HandleMessage(msg entity.ChannelMessage) {
	if msg.Type != entity.MessageTypeNotification {
		return
	}

	var n entity.Notification
	if err := json.Unmarshal(msg.Data, &n); err != nil {
		f.logger.Warn("Dropping unparsable notification", "error", err)
		return
	}

	f.mu.Lock()
	f.notifications = append([]entity.Notification{n}, f.notifications...)
	if len(f.notifications) > f.capacity {
		f.notifications = f.notifications[:f.capacity]
	}
	f.mu.Unlock()
}

// Recent returns a copy of the buffered notifications, most recent first.
func (f *NotificationFeedService) Recent() []entity.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]entity.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out
}

var _ port.NotificationFeed = (*NotificationFeedService)(nil)
