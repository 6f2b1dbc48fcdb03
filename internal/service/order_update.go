package service

import (
	"context"
	"errors"
	"fmt"

	"kekspay-gateway/internal/core/domain"
	"kekspay-gateway/internal/core/ports"
	"kekspay-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

// orderSaveAttempts bounds reload-and-reapply cycles on version conflicts.
const orderSaveAttempts = 3

// orderMutation edits a freshly loaded order and reports whether anything
// changed. Returning false skips the save.
type orderMutation func(order *domain.Order) (bool, error)

// updateOrder loads the order, applies mutate and saves it, reloading and
// reapplying when the store reports a concurrent modification. mutate must
// be safe to run more than once.
func updateOrder(ctx context.Context, repo ports.OrderRepository, log zerolog.Logger, orderID int64, mutate orderMutation) (*domain.Order, bool, error) {
	for attempt := 1; ; attempt++ {
		order, err := repo.GetByID(ctx, orderID)
		if err != nil {
			return nil, false, apperror.ErrDatabaseError(fmt.Errorf("load order %d: %w", orderID, err))
		}
		if order == nil {
			return nil, false, apperror.ErrNotFound("Order")
		}

		changed, err := mutate(order)
		if err != nil {
			return order, false, err
		}
		if !changed {
			return order, false, nil
		}

		err = repo.Save(ctx, order)
		if err == nil {
			return order, true, nil
		}
		if !errors.Is(err, domain.ErrOrderConflict) {
			return nil, false, apperror.ErrDatabaseError(fmt.Errorf("save order %d: %w", orderID, err))
		}
		if attempt == orderSaveAttempts {
			return nil, false, apperror.ErrDatabaseError(fmt.Errorf("save order %d after %d attempts: %w", orderID, attempt, err))
		}
		log.Warn().Int64("order_id", orderID).Int("attempt", attempt).Msg("order modified concurrently, retrying")
	}
}
