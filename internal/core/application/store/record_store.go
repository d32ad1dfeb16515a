// Package store implements the delivery record store: the single authoritative
// writer of delivery status.
//
// Every status mutation in the system goes through RecordStore.ApplyTransition.
// Updates for one delivery are serialized on a per-delivery lock, so no two
// transitions for the same record commit concurrently; deliveries are
// independent and proceed fully in parallel. On commit the store pushes the
// transition to the authoritative backend, persists the aggregate, and
// dispatches a StatusChanged event, synchronously and in commit order.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"parceltrack/internal/core/domain/events"
	"parceltrack/internal/core/domain/model/delivery"
	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/core/ports"
	"parceltrack/internal/pkg/errs"
	"parceltrack/internal/pkg/metrics"
)

// RecordStore holds authoritative delivery state behind per-delivery
// serialization. It owns the only mutation paths for a delivery record:
// Create, Edit, ApplyTransition, and Reconcile.
type RecordStore struct {
	repo       ports.DeliveryRepository
	backend    ports.StatusBackend
	dispatcher *events.Dispatcher
	logger     *slog.Logger

	locks sync.Map // delivery id string -> *sync.Mutex
}

// NewRecordStore creates a record store over the given repository and
// authoritative backend.
func NewRecordStore(
	repo ports.DeliveryRepository,
	backend ports.StatusBackend,
	dispatcher *events.Dispatcher,
	logger *slog.Logger,
) *RecordStore {
	return &RecordStore{
		repo:       repo,
		backend:    backend,
		dispatcher: dispatcher,
		logger:     logger.With("component", "record_store"),
	}
}

// lockDelivery returns the serialization mutex for one delivery, creating it
// on first use. Locks are never removed: the set of deliveries a process
// touches is bounded by its working set.
func (s *RecordStore) lockDelivery(id kernel.UUID) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id.String(), &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Create persists a new delivery aggregate and dispatches its initial
// pending status so subscribers see the record from birth.
func (s *RecordStore) Create(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	mu := s.lockDelivery(aggregate.ID())
	mu.Lock()
	defer mu.Unlock()

	if err := s.repo.Add(ctx, aggregate); err != nil {
		return err
	}

	s.dispatcher.Dispatch(events.StatusChanged{
		DeliveryID: aggregate.ID(),
		From:       delivery.StatusUnknown,
		To:         aggregate.Status(),
		ActorID:    aggregate.SenderID(),
		OccurredAt: time.Now(),
	})

	return nil
}

// Get returns the current state of a delivery record.
func (s *RecordStore) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// GetAllActive returns all deliveries in a non-terminal status.
func (s *RecordStore) GetAllActive(ctx context.Context) ([]*delivery.Delivery, error) {
	return s.repo.GetAllActive(ctx)
}

// Edit applies a sender metadata edit under the delivery's serialization lock.
// The aggregate enforces the sender-only, pending-only rules.
func (s *RecordStore) Edit(
	ctx context.Context,
	id kernel.UUID,
	actorID kernel.UUID,
	fromAddress, toAddress string,
	priceCents int64,
	size delivery.Size,
	weightGrams *int64,
	notes string,
) error {
	if err := errors.Join(id.Validate(), actorID.Validate()); err != nil {
		return err
	}

	mu := s.lockDelivery(id)
	mu.Lock()
	defer mu.Unlock()

	aggregate, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := aggregate.Edit(actorID, fromAddress, toAddress, priceCents, size, weightGrams, notes); err != nil {
		return err
	}

	return s.repo.Update(ctx, aggregate)
}

// ApplyTransition validates, commits, and announces one status transition.
//
// The sequence under the per-delivery lock:
//  1. load the aggregate (errs.ObjectNotFoundError for unknown ids)
//  2. let the aggregate validate table, role, and actor binding; a denied
//     request changes nothing
//  3. idempotent no-ops (target == current) succeed without backend push,
//     persistence, or event emission
//  4. push to the authoritative backend; on a status conflict the store
//     adopts the backend's state (see reconcile) and returns the
//     errs.ConflictError so the caller re-reads and re-validates
//  5. persist and dispatch StatusChanged in commit order
//
// Returns the status held after the call.
func (s *RecordStore) ApplyTransition(
	ctx context.Context,
	id kernel.UUID,
	actorID kernel.UUID,
	role delivery.Role,
	target delivery.Status,
) (delivery.Status, error) {
	if err := errors.Join(id.Validate(), actorID.Validate()); err != nil {
		metrics.TransitionsTotal.WithLabelValues("error").Inc()
		return delivery.StatusUnknown, err
	}

	mu := s.lockDelivery(id)
	mu.Lock()
	defer mu.Unlock()

	aggregate, err := s.repo.Get(ctx, id)
	if err != nil {
		metrics.TransitionsTotal.WithLabelValues("not_found").Inc()
		return delivery.StatusUnknown, err
	}

	from := aggregate.Status()

	changed, err := aggregate.RequestTransition(actorID, role, target)
	if err != nil {
		metrics.TransitionsTotal.WithLabelValues("denied").Inc()
		return from, err
	}
	if !changed {
		metrics.TransitionsTotal.WithLabelValues("noop").Inc()
		return from, nil
	}

	if err := s.backend.PushStatus(ctx, id, aggregate.Status()); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			metrics.TransitionsTotal.WithLabelValues("conflict").Inc()
			s.reconcileLocked(ctx, id, from)
			return from, err
		}
		metrics.TransitionsTotal.WithLabelValues("error").Inc()
		return from, err
	}

	if err := s.repo.Update(ctx, aggregate); err != nil {
		metrics.TransitionsTotal.WithLabelValues("error").Inc()
		return from, err
	}

	s.dispatcher.Dispatch(events.StatusChanged{
		DeliveryID: id,
		From:       from,
		To:         aggregate.Status(),
		ActorID:    actorID,
		PickerID:   aggregate.PickerID(),
		OccurredAt: time.Now(),
	})

	metrics.TransitionsTotal.WithLabelValues("applied").Inc()
	return aggregate.Status(), nil
}

// Reconcile adopts the backend's authoritative status for a delivery when it
// differs from the local record. Used by the periodic reconcile job and after
// a push conflict. A backend-originated change dispatches StatusChanged like
// any local commit, so session management reacts to remote cancellations too.
func (s *RecordStore) Reconcile(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	mu := s.lockDelivery(id)
	mu.Lock()
	defer mu.Unlock()

	aggregate, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	return s.adoptRemote(ctx, aggregate)
}

// reconcileLocked is the conflict path of ApplyTransition: the per-delivery
// lock is already held. Failures are logged and swallowed; the caller is
// already receiving the conflict error.
func (s *RecordStore) reconcileLocked(ctx context.Context, id kernel.UUID, localStatus delivery.Status) {
	aggregate, err := s.repo.Get(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Conflict reconciliation failed to reload record",
			"deliveryId", id.String(), "error", err)
		return
	}

	if err := s.adoptRemote(ctx, aggregate); err != nil {
		s.logger.ErrorContext(ctx, "Conflict reconciliation failed",
			"deliveryId", id.String(), "localStatus", localStatus.String(), "error", err)
	}
}

// adoptRemote fetches the backend status and, when it differs, rebuilds the
// local record around it. The picker binding is preserved; if the remote
// status requires a picker the local record does not have, the remote state
// cannot be represented and the record is left unchanged.
func (s *RecordStore) adoptRemote(ctx context.Context, aggregate *delivery.Delivery) error {
	remote, err := s.backend.FetchStatus(ctx, aggregate.ID())
	if err != nil {
		return err
	}

	local := aggregate.Status()
	if remote == local {
		return nil
	}

	restored, err := delivery.RestoreDelivery(
		aggregate.ID(),
		aggregate.SenderID(),
		aggregate.PickerID(),
		remote,
		aggregate.FromAddress(),
		aggregate.ToAddress(),
		aggregate.PriceCents(),
		aggregate.Size(),
		aggregate.WeightGrams(),
		aggregate.Notes(),
	)
	if err != nil {
		return err
	}

	if err := s.repo.Update(ctx, restored); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Adopted authoritative backend status",
		"deliveryId", aggregate.ID().String(),
		"localStatus", local.String(), "remoteStatus", remote.String())

	s.dispatcher.Dispatch(events.StatusChanged{
		DeliveryID: restored.ID(),
		From:       local,
		To:         restored.Status(),
		ActorID:    restored.SenderID(),
		PickerID:   restored.PickerID(),
		OccurredAt: time.Now(),
	})

	return nil
}
