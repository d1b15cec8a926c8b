package models

import (
	"time"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
)

// Отображаемые названия статусов. Состояние хранится только как enum.
var statusLabels = map[domain.ReservationStatus]string{
	domain.StatusConfirmed: "예약완료",
	domain.StatusCancelled: "취소",
}

// StatusLabel возвращает отображаемое название статуса
func StatusLabel(status domain.ReservationStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}

// Request модели

// GetStudentReservationsRequest запрос на получение бронирований студента
type GetStudentReservationsRequest struct {
	StudentID int64
	Status    *string
}

// GetRoomBlackoutsRequest запрос на получение окон недоступности комнаты
type GetRoomBlackoutsRequest struct {
	RoomID int64
	Date   time.Time
}

// Response модели

// FacilityItem данные учреждения
type FacilityItem struct {
	FacilityID  int64  `json:"facility_id"`
	Name        string `json:"facility_name"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// RoomItem данные комнаты
type RoomItem struct {
	RoomID     int64   `json:"room_id"`
	FacilityID int64   `json:"facility_id"`
	Name       string  `json:"room_name"`
	Floor      string  `json:"floor"`
	Capacity   int     `json:"capacity"`
	Equipment  *string `json:"equipment,omitempty"`
	OpenTime   *string `json:"open_time,omitempty"`  // "09:00"
	CloseTime  *string `json:"close_time,omitempty"` // "22:00"
}

// ReservationListItem элемент списка бронирований
type ReservationListItem struct {
	ReservationID int64  `json:"reservation_id"`
	StudentID     int64  `json:"student_id"`
	RoomID        int64  `json:"room_id"`
	FacilityID    int64  `json:"facility_id"`
	Status        string `json:"reservation_status"`       // "confirmed" | "cancelled"
	StatusLabel   string `json:"reservation_status_label"` // отображаемое название
	Date          string `json:"reservation_date"`         // "2025-03-10"
	StartAt       string `json:"reservation_start_date"`   // "2025-03-10T10:00:00"
	EndAt         string `json:"reservation_end_date"`
	Credits       int    `json:"reservation_count"`
	Active        bool   `json:"use_tf"`

	Room     *RoomItem     `json:"room_item,omitempty"`
	Facility *FacilityItem `json:"facility_item,omitempty"`
}

// ReservationDetail детальное представление бронирования
type ReservationDetail struct {
	ReservationListItem

	CancelDate *string `json:"cancel_date"`
	RegDate    string  `json:"reg_date"`
	UpDate     string  `json:"up_date"`
}

// ReservationListResponse список бронирований с общим количеством
type ReservationListResponse struct {
	Items      []ReservationListItem `json:"items"`
	TotalCount int                   `json:"total_count"`
}

// BlackoutItem окно недоступности комнаты
type BlackoutItem struct {
	BlackoutID int64   `json:"disable_id"`
	RoomID     int64   `json:"room_id"`
	FacilityID int64   `json:"facility_id"`
	Date       string  `json:"disable_date"`
	StartAt    string  `json:"disable_start_date"`
	EndAt      string  `json:"disable_end_date"`
	Reason     *string `json:"reason,omitempty"`
}

// BlackoutListResponse окна недоступности комнаты на дату
type BlackoutListResponse struct {
	RoomID int64          `json:"room_id"`
	Date   string         `json:"date"`
	Items  []BlackoutItem `json:"items"`
}

// Функции конвертации

// ToDomainStatus конвертирует строку в статус бронирования
func ToDomainStatus(status string) (domain.ReservationStatus, error) {
	return domain.ParseReservationStatus(status)
}

// FromDomainRoom конвертирует комнату
func FromDomainRoom(r *domain.Room) *RoomItem {
	if r == nil {
		return nil
	}
	item := &RoomItem{
		RoomID:     r.ID,
		FacilityID: r.FacilityID,
		Name:       r.Name,
		Floor:      r.Floor,
		Capacity:   r.Capacity,
		Equipment:  r.Equipment,
	}
	if r.HasOperatingHours() {
		open, closing := r.OpenTime.String(), r.CloseTime.String()
		item.OpenTime = &open
		item.CloseTime = &closing
	}
	return item
}

// FromDomainFacility конвертирует учреждение
func FromDomainFacility(f *domain.Facility) *FacilityItem {
	if f == nil {
		return nil
	}
	return &FacilityItem{
		FacilityID:  f.ID,
		Name:        f.Name,
		Address:     f.Address,
		Description: f.Description,
	}
}

// FromDomainListItem конвертирует бронирование в элемент списка
func FromDomainListItem(r *domain.Reservation) ReservationListItem {
	return ReservationListItem{
		ReservationID: r.ID,
		StudentID:     r.StudentID,
		RoomID:        r.RoomID,
		FacilityID:    r.FacilityID,
		Status:        string(r.Status),
		StatusLabel:   StatusLabel(r.Status),
		Date:          r.Date.Format(domain.DateFormat),
		StartAt:       r.StartAt.Format(domain.DateTimeFormat),
		EndAt:         r.EndAt.Format(domain.DateTimeFormat),
		Credits:       r.Credits,
		Active:        r.Active,
		Room:          FromDomainRoom(r.Room),
		Facility:      FromDomainFacility(r.Facility),
	}
}

// FromDomainDetail конвертирует бронирование в детальное представление
func FromDomainDetail(r *domain.Reservation) *ReservationDetail {
	detail := &ReservationDetail{
		ReservationListItem: FromDomainListItem(r),
		RegDate:             r.CreatedAt.Format(domain.DateFormat),
		UpDate:              r.UpdatedAt.Format(domain.DateFormat),
	}
	if r.CancelDate != nil {
		d := r.CancelDate.Format(domain.DateFormat)
		detail.CancelDate = &d
	}
	return detail
}

// FromDomainList конвертирует список бронирований
func FromDomainList(list []*domain.Reservation) *ReservationListResponse {
	items := make([]ReservationListItem, 0, len(list))
	for _, r := range list {
		items = append(items, FromDomainListItem(r))
	}
	return &ReservationListResponse{
		Items:      items,
		TotalCount: len(items),
	}
}

// FromDomainBlackouts конвертирует окна недоступности
func FromDomainBlackouts(roomID int64, date time.Time, list []*domain.BlackoutWindow) *BlackoutListResponse {
	items := make([]BlackoutItem, 0, len(list))
	for _, b := range list {
		items = append(items, BlackoutItem{
			BlackoutID: b.ID,
			RoomID:     b.RoomID,
			FacilityID: b.FacilityID,
			Date:       b.Date.Format(domain.DateFormat),
			StartAt:    b.StartAt.Format(domain.DateTimeFormat),
			EndAt:      b.EndAt.Format(domain.DateTimeFormat),
			Reason:     b.Reason,
		})
	}
	return &BlackoutListResponse{
		RoomID: roomID,
		Date:   date.Format(domain.DateFormat),
		Items:  items,
	}
}
