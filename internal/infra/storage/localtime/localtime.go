// Package localtime переводит значения колонок DATE/TIMESTAMP (без часового пояса)
// в локальное время сервиса.
package localtime

import "time"

// In интерпретирует показания часов t как время в loc.
// lib/pq возвращает TIMESTAMP без пояса в UTC, сами показания верны.
func In(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), loc)
}

// Wall возвращает показания часов t без пояса, пригодные для записи в TIMESTAMP
func Wall(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	hh, mm, ss := local.Clock()
	return time.Date(y, m, d, hh, mm, ss, local.Nanosecond(), time.UTC)
}

// Date возвращает полночь календарной даты t (в поясе loc) для записи в DATE
func Date(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
