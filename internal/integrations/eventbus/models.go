package eventbus

import "time"

// Имена очередей (routing key в default exchange)
const (
	QueueReservationConfirmed = "reservation.confirmed"
	QueueReservationCancelled = "reservation.cancelled"
)

// ReservationConfirmed событие о принятом бронировании
type ReservationConfirmed struct {
	ReservationID int64     `json:"reservation_id"`
	StudentID     int64     `json:"student_id"`
	RoomID        int64     `json:"room_id"`
	FacilityID    int64     `json:"facility_id"`
	Date          string    `json:"date"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	Credits       int       `json:"credits"`
}

// ReservationCancelled событие об отмене бронирования
type ReservationCancelled struct {
	ReservationID int64     `json:"reservation_id"`
	StudentID     int64     `json:"student_id"`
	RoomID        int64     `json:"room_id"`
	Date          string    `json:"date"`
	StartAt       time.Time `json:"start_at"`
	CancelDate    string    `json:"cancel_date"`
}
