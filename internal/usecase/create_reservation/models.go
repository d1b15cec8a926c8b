package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-StudyRoomService/internal/domain"
)

// Request модель запроса на создание бронирования.
// Дата и время интерпретируются в часовом поясе сервиса.
type Request struct {
	StudentID  int64     // ID студента из X-User-ID
	RoomID     int64     // ID комнаты
	FacilityID int64     // ID учреждения
	Date       time.Time // Дата бронирования
	StartAt    time.Time // Начало интервала
	EndAt      time.Time // Конец интервала (не включается)
	Active     *bool     // Флаг use_tf, по умолчанию true
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID         int64
	StudentID  int64
	RoomID     int64
	FacilityID int64
	Status     string
	Date       time.Time
	StartAt    time.Time
	EndAt      time.Time
	Credits    int
	CreatedAt  time.Time
}

// Policy параметры правил бронирования
type Policy struct {
	BookingWindowDays int            // Сколько дней вперед можно бронировать
	MaxDailyCredits   int            // Лимит кредитов студента в день
	Location          *time.Location // Часовой пояс сервиса
}

// DefaultPolicy правила по умолчанию
func DefaultPolicy(loc *time.Location) Policy {
	return Policy{
		BookingWindowDays: domain.DefaultBookingWindowDays,
		MaxDailyCredits:   domain.DefaultMaxDailyCredits,
		Location:          loc,
	}
}

// candidate нормализованный запрос в поясе сервиса
type candidate struct {
	studentID  int64
	roomID     int64
	facilityID int64
	date       time.Time
	start      time.Time
	end        time.Time
	credits    int
}
