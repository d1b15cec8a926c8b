package rooms

import (
	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
	"github.com/m04kA/SMC-StudyRoomService/pkg/types"
)

// cachedFacility представление учреждения в кеше
type cachedFacility struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// cachedRoom представление комнаты в кеше
type cachedRoom struct {
	ID         int64             `json:"id"`
	FacilityID int64             `json:"facility_id"`
	Name       string            `json:"name"`
	Floor      string            `json:"floor"`
	Capacity   int               `json:"capacity"`
	Equipment  *string           `json:"equipment,omitempty"`
	OpenTime   *types.TimeString `json:"open_time,omitempty"`
	CloseTime  *types.TimeString `json:"close_time,omitempty"`
	Facility   *cachedFacility   `json:"facility,omitempty"`
}

func fromFacility(f *domain.Facility) *cachedFacility {
	if f == nil {
		return nil
	}
	return &cachedFacility{
		ID:          f.ID,
		Name:        f.Name,
		Address:     f.Address,
		Description: f.Description,
	}
}

func (c *cachedFacility) toDomain() *domain.Facility {
	if c == nil {
		return nil
	}
	return &domain.Facility{
		ID:          c.ID,
		Name:        c.Name,
		Address:     c.Address,
		Description: c.Description,
	}
}

func fromRoom(r *domain.Room) *cachedRoom {
	return &cachedRoom{
		ID:         r.ID,
		FacilityID: r.FacilityID,
		Name:       r.Name,
		Floor:      r.Floor,
		Capacity:   r.Capacity,
		Equipment:  r.Equipment,
		OpenTime:   r.OpenTime,
		CloseTime:  r.CloseTime,
		Facility:   fromFacility(r.Facility),
	}
}

func (c *cachedRoom) toDomain() *domain.Room {
	return &domain.Room{
		ID:         c.ID,
		FacilityID: c.FacilityID,
		Name:       c.Name,
		Floor:      c.Floor,
		Capacity:   c.Capacity,
		Equipment:  c.Equipment,
		OpenTime:   c.OpenTime,
		CloseTime:  c.CloseTime,
		Facility:   c.Facility.toDomain(),
	}
}
