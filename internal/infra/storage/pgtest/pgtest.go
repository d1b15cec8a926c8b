// Package pgtest поднимает изолированную схему PostgreSQL для интеграционных тестов.
// Тесты пропускаются, если SRS_TEST_DSN не задан.
package pgtest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-StudyRoomService/pkg/dbmetrics"
)

// EnvDSN переменная окружения со строкой подключения к тестовой БД
const EnvDSN = "SRS_TEST_DSN"

// Open подключается к БД из SRS_TEST_DSN, создает отдельную схему и накатывает миграции.
// Схема удаляется по завершении теста.
func Open(t testing.TB) *dbmetrics.DB {
	t.Helper()

	raw := strings.TrimSpace(os.Getenv(EnvDSN))
	if raw == "" {
		t.Skipf("integration test skipped: %s is not set", EnvDSN)
	}

	dsn := raw
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		parsed, err := pq.ParseURL(raw)
		if err != nil {
			t.Fatalf("parse %s: %v", EnvDSN, err)
		}
		dsn = parsed
	}

	admin, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := admin.PingContext(ctx); err != nil {
		_ = admin.Close()
		if shouldSkip(err) {
			t.Skipf("integration test skipped: postgres unreachable: %v", err)
		}
		t.Fatalf("ping postgres: %v", err)
	}

	schema := fmt.Sprintf("srs_it_%d", time.Now().UnixNano())
	if _, err := admin.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS btree_gist"); err != nil {
		t.Fatalf("create btree_gist: %v", err)
	}
	if _, err := admin.ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	db, err := sql.Open("postgres", dsn+" search_path="+schema+",public")
	if err != nil {
		t.Fatalf("open schema connection: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
		_, _ = admin.Exec("DROP SCHEMA IF EXISTS " + schema + " CASCADE")
		_ = admin.Close()
	})

	if _, err := db.ExecContext(ctx, readMigration(t)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	return dbmetrics.Wrap(db, nil)
}

// SeedRoom создает учреждение и несколько комнат с часами работы 09:00-22:00.
// Возвращает ID учреждения и ID комнат.
func SeedRoom(t testing.TB, db *dbmetrics.DB, rooms int) (int64, []int64) {
	t.Helper()
	ctx := context.Background()

	var facilityID int64
	err := db.QueryRowContext(ctx,
		`INSERT INTO facilities (name, address) VALUES ($1, $2) RETURNING id`,
		"Main Library", "Campus 1",
	).Scan(&facilityID)
	if err != nil {
		t.Fatalf("seed facility: %v", err)
	}

	ids := make([]int64, 0, rooms)
	for i := 0; i < rooms; i++ {
		var id int64
		err := db.QueryRowContext(ctx,
			`INSERT INTO study_rooms (facility_id, name, floor, capacity, open_time, close_time)
			 VALUES ($1, $2, '3', 6, '09:00', '22:00') RETURNING id`,
			facilityID, fmt.Sprintf("R-%d", 301+i),
		).Scan(&id)
		if err != nil {
			t.Fatalf("seed room: %v", err)
		}
		ids = append(ids, id)
	}

	return facilityID, ids
}

// SeedReservation вставляет подтвержденное бронирование; start и end в формате YYYY-MM-DD HH:MM:SS
func SeedReservation(t testing.TB, db *dbmetrics.DB, studentID, roomID, facilityID int64, date, start, end string, credits int) int64 {
	t.Helper()

	var id int64
	err := db.QueryRowContext(context.Background(),
		`INSERT INTO reservations (student_id, room_id, facility_id, status, reservation_date, start_at, end_at, credits)
		 VALUES ($1, $2, $3, 'confirmed', $4, $5, $6, $7) RETURNING id`,
		studentID, roomID, facilityID, date, start, end, credits,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed reservation: %v", err)
	}
	return id
}

// CountConfirmed количество подтвержденных бронирований комнаты
func CountConfirmed(t testing.TB, db *dbmetrics.DB, roomID int64) int {
	t.Helper()

	var n int
	err := db.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM reservations WHERE room_id = $1 AND status = 'confirmed'`, roomID,
	).Scan(&n)
	if err != nil {
		t.Fatalf("count reservations: %v", err)
	}
	return n
}

func readMigration(t testing.TB) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("locate migrations: runtime.Caller failed")
	}
	path := filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations", "001_init.up.sql")

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	return string(body)
}

func shouldSkip(err error) bool {
	if os.Getenv("CI") != "" {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "timeout")
}
