package application

import (
	"context"
	"log/slog"

	"github.com/luciferfruits/storefront/internal/message/domain"
	"github.com/luciferfruits/storefront/internal/state"
)

type Service struct {
	log   *slog.Logger
	store StateStore
}

func NewService(log *slog.Logger, store StateStore) *Service {
	return &Service{log: log, store: store}
}

// Add appends a customer message. The order id is a weak reference and is
// not checked against the ledger.
func (s *Service) Add(ctx context.Context, orderID int64, name, email, text string) (domain.Message, error) {
	var added domain.Message
	err := s.store.Update(ctx, func(tx *state.Tx) error {
		m, err := domain.NewMessage(0, orderID, name, email, text, tx.Now)
		if err != nil {
			return err
		}
		m.ID = tx.NextMessageID()
		tx.Messages = append(tx.Messages, m)
		tx.Touch(state.KeyMessages)
		added = m
		return nil
	})
	if err != nil {
		return domain.Message{}, err
	}
	s.log.Info("message stored", "message_id", added.ID, "order_id", int64(added.OrderID))
	return added, nil
}

func (s *Service) Threads() []domain.Thread {
	var out []domain.Thread
	s.store.View(func(d state.Data) {
		out = domain.GroupThreads(d.Messages, d.Orders)
	})
	return out
}
