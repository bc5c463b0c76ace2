package notify

import (
	"context"
	"fmt"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"go.uber.org/zap"
)

type NotificationDispatcher interface {
	Dispatch(ctx context.Context, record models.Record) error
}

// Dispatcher renders records with the collection name and hands them to the
// sink. Delivery is attempted once.
type Dispatcher struct {
	sink           Sink
	collectionName string
}

func NewDispatcher(sink Sink, collectionName string) *Dispatcher {
	return &Dispatcher{sink: sink, collectionName: collectionName}
}

func (d *Dispatcher) Dispatch(ctx context.Context, record models.Record) error {
	var message string
	switch r := record.(type) {
	case *models.SaleRecord:
		message = FormatSale(d.collectionName, r)
	case *models.SweepRecord:
		message = FormatSweep(d.collectionName, r)
	default:
		return fmt.Errorf("%w: unsupported record %T", ErrDispatch, record)
	}

	if err := d.sink.Publish(ctx, message); err != nil {
		zap.L().Error("Failed to publish notification", zap.String("message", message), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrDispatch, err)
	}
	return nil
}
