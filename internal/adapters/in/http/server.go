// Package http exposes the delivery marketplace over a REST API: lifecycle
// commands, read models, the viewer tracking toggle, the producer location
// ingest, and a streaming event feed per delivery.
package http

import (
	"errors"
	"net/http"
	"time"

	"parceltrack/internal/core/application/usecases/commands"
	"parceltrack/internal/core/application/usecases/queries"
	"parceltrack/internal/core/domain/events"
	"parceltrack/internal/core/domain/model/delivery"
	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/observer"
	"parceltrack/internal/pkg/errs"
	"parceltrack/internal/tracking"

	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createDeliveryHandler    commands.CreateDeliveryCommandHandler
	editDeliveryHandler      commands.EditDeliveryCommandHandler
	requestTransitionHandler commands.RequestTransitionCommandHandler

	// Query handlers
	getDeliveryHandler         queries.GetDeliveryQueryHandler
	getActiveDeliveriesHandler queries.GetActiveDeliveriesQueryHandler

	// Live tracking
	supervisor *tracking.Supervisor
	hub        *observer.Hub
}

// NewServer creates a new HTTP server with the required handlers and
// tracking collaborators.
func NewServer(
	createDeliveryHandler commands.CreateDeliveryCommandHandler,
	editDeliveryHandler commands.EditDeliveryCommandHandler,
	requestTransitionHandler commands.RequestTransitionCommandHandler,
	getDeliveryHandler queries.GetDeliveryQueryHandler,
	getActiveDeliveriesHandler queries.GetActiveDeliveriesQueryHandler,
	supervisor *tracking.Supervisor,
	hub *observer.Hub,
) *Server {
	return &Server{
		createDeliveryHandler:      createDeliveryHandler,
		editDeliveryHandler:        editDeliveryHandler,
		requestTransitionHandler:   requestTransitionHandler,
		getDeliveryHandler:         getDeliveryHandler,
		getActiveDeliveriesHandler: getActiveDeliveriesHandler,
		supervisor:                 supervisor,
		hub:                        hub,
	}
}

// RegisterRoutes mounts all API routes on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/deliveries", s.CreateDelivery)
	api.GET("/deliveries", s.GetActiveDeliveries)
	api.GET("/deliveries/:id", s.GetDelivery)
	api.PATCH("/deliveries/:id", s.EditDelivery)
	api.POST("/deliveries/:id/transition", s.RequestTransition)
	api.PUT("/deliveries/:id/viewer", s.SetViewer)
	api.POST("/deliveries/:id/location", s.PublishLocation)
	api.GET("/deliveries/:id/events", s.StreamEvents)

	e.GET("/health", s.Health)
}

// CreateDelivery handles POST /api/v1/deliveries - posts a new delivery
// request in pending status.
func (s *Server) CreateDelivery(ctx echo.Context) error {
	var request CreateDeliveryRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	senderID, err := kernel.UUIDFromString(request.SenderID)
	if err != nil {
		return badRequest(ctx, "Invalid sender id: "+err.Error())
	}

	size, err := delivery.SizeFromString(request.Size)
	if err != nil {
		return badRequest(ctx, "Invalid size: "+err.Error())
	}

	deliveryID := kernel.NewUUID()
	cmd, err := commands.NewCreateDeliveryCommand(
		deliveryID, senderID,
		request.FromAddress, request.ToAddress, request.PriceCents,
		size, request.WeightGrams, request.Notes)
	if err != nil {
		return badRequest(ctx, "Invalid delivery data: "+err.Error())
	}

	if err := s.createDeliveryHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreateDeliveryResponse{ID: deliveryID.String()})
}

// GetDelivery handles GET /api/v1/deliveries/:id - retrieves one delivery.
func (s *Server) GetDelivery(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id")
	}

	query, err := queries.NewGetDeliveryQuery(deliveryID)
	if err != nil {
		return badRequest(ctx, "Invalid delivery id")
	}

	record, err := s.getDeliveryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toDeliveryDTO(record))
}

// GetActiveDeliveries handles GET /api/v1/deliveries - lists all open and
// in-flight deliveries.
func (s *Server) GetActiveDeliveries(ctx echo.Context) error {
	records, err := s.getActiveDeliveriesHandler.Handle(
		ctx.Request().Context(), queries.NewGetActiveDeliveriesQuery())
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]Delivery, len(records))
	for i, record := range records {
		response[i] = toDeliveryDTO(record)
	}
	return ctx.JSON(http.StatusOK, response)
}

// EditDelivery handles PATCH /api/v1/deliveries/:id - a sender revision of a
// pending delivery.
func (s *Server) EditDelivery(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id")
	}

	var request EditDeliveryRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	actorID, err := kernel.UUIDFromString(request.ActorID)
	if err != nil {
		return badRequest(ctx, "Invalid actor id: "+err.Error())
	}

	size, err := delivery.SizeFromString(request.Size)
	if err != nil {
		return badRequest(ctx, "Invalid size: "+err.Error())
	}

	cmd, err := commands.NewEditDeliveryCommand(
		deliveryID, actorID,
		request.FromAddress, request.ToAddress, request.PriceCents,
		size, request.WeightGrams, request.Notes)
	if err != nil {
		return badRequest(ctx, "Invalid delivery data: "+err.Error())
	}

	if err := s.editDeliveryHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RequestTransition handles POST /api/v1/deliveries/:id/transition - an
// actor's request to move the delivery to a new status.
func (s *Server) RequestTransition(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id")
	}

	var request TransitionRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	actorID, err := kernel.UUIDFromString(request.ActorID)
	if err != nil {
		return badRequest(ctx, "Invalid actor id: "+err.Error())
	}

	role, err := delivery.RoleFromString(request.Role)
	if err != nil {
		return badRequest(ctx, "Invalid role: "+err.Error())
	}

	target, err := delivery.StatusFromString(request.Target)
	if err != nil {
		return badRequest(ctx, "Invalid target status: "+err.Error())
	}

	cmd, err := commands.NewRequestTransitionCommand(deliveryID, actorID, role, target)
	if err != nil {
		return badRequest(ctx, "Invalid transition request: "+err.Error())
	}

	status, err := s.requestTransitionHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, TransitionResponse{Status: status.String()})
}

// SetViewer handles PUT /api/v1/deliveries/:id/viewer - the viewer's consent
// toggle for live tracking.
func (s *Server) SetViewer(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id")
	}

	var request ViewerRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	s.supervisor.SetViewerEnabled(deliveryID, request.Enabled)
	return ctx.NoContent(http.StatusNoContent)
}

// PublishLocation handles POST /api/v1/deliveries/:id/location - one position
// report from the picker's device.
func (s *Server) PublishLocation(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id")
	}

	var request LocationRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	coords, err := kernel.NewCoordinates(request.Lat, request.Lng)
	if err != nil {
		return badRequest(ctx, "Invalid coordinates: "+err.Error())
	}

	capturedAt := time.Now()
	if request.CapturedAt != nil {
		capturedAt = *request.CapturedAt
	}

	accepted, err := s.supervisor.Publish(deliveryID, tracking.RawSample{
		Coords:     coords,
		CapturedAt: capturedAt,
		Seq:        request.Seq,
	})
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusAccepted, LocationResponse{Accepted: accepted})
}

// StreamEvents handles GET /api/v1/deliveries/:id/events - a newline
// delimited JSON stream of status, location, and tracking-unavailable frames.
// The last known status and position are replayed first; the stream ends when
// the delivery reaches a terminal status or the client disconnects.
func (s *Server) StreamEvents(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id")
	}

	response := ctx.Response()
	response.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	response.WriteHeader(http.StatusOK)
	response.Flush()

	sub := s.hub.Subscribe(deliveryID)
	defer s.hub.Unsubscribe(sub)

	done := ctx.Request().Context().Done()
	for {
		select {
		case <-done:
			return nil
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			frame, marshalErr := events.MarshalFrame(event)
			if marshalErr != nil {
				return marshalErr
			}
			if _, writeErr := response.Write(append(frame, '\n')); writeErr != nil {
				return writeErr
			}
			response.Flush()
		}
	}
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func toDeliveryDTO(record queries.DeliveryResponse) Delivery {
	dto := Delivery{
		ID:          record.ID.String(),
		SenderID:    record.SenderID.String(),
		Status:      record.Status,
		FromAddress: record.FromAddress,
		ToAddress:   record.ToAddress,
		PriceCents:  record.PriceCents,
		Size:        record.Size,
		WeightGrams: record.WeightGrams,
		Notes:       record.Notes,
	}
	if record.PickerID != nil {
		picker := record.PickerID.String()
		dto.PickerID = &picker
	}
	return dto
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// writeError maps application errors onto HTTP status codes.
func writeError(ctx echo.Context, err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		code = http.StatusNotFound
	case errors.Is(err, delivery.ErrInvalidTransition),
		errors.Is(err, errs.ErrConflict),
		errors.Is(err, tracking.ErrNoActiveSession),
		errors.Is(err, tracking.ErrSessionClosed):
		code = http.StatusConflict
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid):
		code = http.StatusBadRequest
	}

	return ctx.JSON(code, Error{Code: code, Message: err.Error()})
}
