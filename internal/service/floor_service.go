package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ayushbirla71/restaurant-backend/internal/events"
	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

// FloorService implements floor layout CRUD.
type FloorService struct {
	floors FloorRepository
	bus    EventPublisher
	logger zerolog.Logger
}

func NewFloorService(floors FloorRepository, bus EventPublisher, logger zerolog.Logger) *FloorService {
	return &FloorService{
		floors: floors,
		bus:    bus,
		logger: logger.With().Str("component", "floors").Logger(),
	}
}

// Create adds a named floor.
func (s *FloorService) Create(ctx context.Context, floorNumber int, name string) (*models.Floor, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: floor name required", ErrInvalidTarget)
	}
	floor := &models.Floor{FloorNumber: floorNumber, Name: name}
	if err := s.floors.CreateFloor(ctx, floor); err != nil {
		return nil, err
	}
	_ = s.bus.PublishJSON(events.FloorCreated, floor)
	_ = s.bus.PublishJSON(events.DashboardUpdated, nil)
	s.logger.Info().Str("floor_id", floor.ID).Str("name", name).Msg("floor created")
	return floor, nil
}

// Delete removes a floor; its tables go with it.
func (s *FloorService) Delete(ctx context.Context, id string) error {
	if err := s.floors.DeleteFloor(ctx, id); err != nil {
		return mapNotFound(err)
	}
	_ = s.bus.PublishJSON(events.FloorDeleted, map[string]string{"floorId": id})
	_ = s.bus.PublishJSON(events.DashboardUpdated, nil)
	s.logger.Info().Str("floor_id", id).Msg("floor deleted")
	return nil
}

// List returns floors without tables.
func (s *FloorService) List(ctx context.Context) ([]models.Floor, error) {
	return s.floors.ListFloors(ctx)
}

// ListWithTables returns floors with their tables attached.
func (s *FloorService) ListWithTables(ctx context.Context) ([]models.Floor, error) {
	return s.floors.ListFloorsWithTables(ctx)
}
