package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"parceltrack/internal/core/application/store"
	"parceltrack/internal/core/domain/events"
	"parceltrack/internal/core/domain/model/delivery"
	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/pkg/errs"
)

// memoryRepository is an in-memory DeliveryRepository for handler tests.
type memoryRepository struct {
	mu      sync.Mutex
	records map[string]*delivery.Delivery
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: map[string]*delivery.Delivery{}}
}

func (r *memoryRepository) Add(_ context.Context, aggregate *delivery.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[aggregate.ID().String()] = aggregate
	return nil
}

func (r *memoryRepository) Update(_ context.Context, aggregate *delivery.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[aggregate.ID().String()]; !ok {
		return errs.NewObjectNotFoundError("delivery", aggregate.ID().String())
	}
	r.records[aggregate.ID().String()] = aggregate
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if aggregate, ok := r.records[id.String()]; ok {
		return aggregate, nil
	}
	return nil, errs.NewObjectNotFoundError("delivery", id.String())
}

func (r *memoryRepository) GetAllActive(_ context.Context) ([]*delivery.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	active := make([]*delivery.Delivery, 0, len(r.records))
	for _, aggregate := range r.records {
		if !aggregate.Status().IsTerminal() {
			active = append(active, aggregate)
		}
	}
	return active, nil
}

// approvingBackend accepts every pushed transition.
type approvingBackend struct{}

func (approvingBackend) PushStatus(_ context.Context, _ kernel.UUID, _ delivery.Status) error {
	return nil
}

func (approvingBackend) FetchStatus(_ context.Context, _ kernel.UUID) (delivery.Status, error) {
	return delivery.StatusUnknown, errs.NewObjectNotFoundError("delivery", "fetch not expected")
}

func newTestStore() (*store.RecordStore, *memoryRepository) {
	repo := newMemoryRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recordStore := store.NewRecordStore(repo, approvingBackend{}, events.NewDispatcher(), logger)
	return recordStore, repo
}
