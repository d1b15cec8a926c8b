package cancel_reservation

import "time"

// Request модель запроса на отмену бронирования
type Request struct {
	ReservationID int64
	StudentID     int64 // ID студента из X-User-ID
}

// Response модель ответа после отмены
type Response struct {
	ReservationID int64
	Status        string
	CancelDate    time.Time
}
