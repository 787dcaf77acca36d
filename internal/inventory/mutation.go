package inventory

import (
	"context"
	"time"

	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
)

// publishTimeout bounds a single notification publish.
const publishTimeout = 5 * time.Second

// Restock schedules a simulated restock and returns immediately. After the
// restock delay every record for city and item is set to SafeStockLevel and a
// notification is prepended. Pending restocks cannot be cancelled.
func (s *Store) Restock(city string, category domain.Category, item string) {
	s.logger.Info("restock scheduled", "city", city, "item", item, "delay", s.restockDelay)
	s.clock.AfterFunc(s.restockDelay, func() {
		s.completeRestock(city, category, item)
	})
}

func (s *Store) completeRestock(city string, category domain.Category, item string) {
	s.mu.Lock()
	n := domain.NewNotification(s.newID(), city, category, item, s.clock.Now())
	updated := 0
	for i := range s.records {
		if s.records[i].City == city && s.records[i].Item == item {
			s.records[i].Stock = SafeStockLevel
			updated++
		}
	}
	s.notifications = append([]domain.Notification{n}, s.notifications...)
	unread := s.unreadLocked()
	publisher := s.publisher
	s.mu.Unlock()

	s.logger.Info("restock complete", "city", city, "item", item, "records", updated, "notification_id", n.ID)
	if s.metrics != nil {
		s.metrics.Mutations.WithLabelValues("restock").Inc()
		s.metrics.NotificationsUnread.Set(float64(unread))
	}

	if publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := publisher.PublishNotification(ctx, n); err != nil {
			s.logger.Warn("publish notification failed", "error", err, "notification_id", n.ID)
		}
	}
}

// Transfer moves amount units of item from the source city to the target city.
// The move is applied unconditionally: callers validate that the source holds
// enough stock. Total stock across the two cities is conserved.
func (s *Store) Transfer(sourceCity, targetCity, item string, amount int) {
	s.mu.Lock()
	for i := range s.records {
		if s.records[i].Item != item {
			continue
		}
		switch s.records[i].City {
		case sourceCity:
			s.records[i].Stock -= amount
		case targetCity:
			s.records[i].Stock += amount
		}
	}
	s.mu.Unlock()

	s.logger.Info("transfer applied", "source", sourceCity, "target", targetCity, "item", item, "amount", amount)
	if s.metrics != nil {
		s.metrics.Mutations.WithLabelValues("transfer").Inc()
	}
}

// Notifications returns a copy of the notification list, newest first.
func (s *Store) Notifications() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// MarkRead flags a notification as read.
func (s *Store) MarkRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			s.reportUnreadLocked()
			return nil
		}
	}
	return ErrNotificationNotFound
}

// ClearNotification removes a notification.
func (s *Store) ClearNotification(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			s.reportUnreadLocked()
			return nil
		}
	}
	return ErrNotificationNotFound
}

// UnreadCount returns the number of unread notifications.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unreadLocked()
}

func (s *Store) unreadLocked() int {
	n := 0
	for _, x := range s.notifications {
		if !x.Read {
			n++
		}
	}
	return n
}

func (s *Store) reportUnreadLocked() {
	if s.metrics != nil {
		s.metrics.NotificationsUnread.Set(float64(s.unreadLocked()))
	}
}
