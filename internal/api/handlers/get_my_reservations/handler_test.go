package get_my_reservations

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudyRoomService/internal/api/middleware"
	"github.com/m04kA/SMC-StudyRoomService/internal/service/reservations"
	"github.com/m04kA/SMC-StudyRoomService/internal/service/reservations/models"
)

type fakeService struct {
	got *models.GetStudentReservationsRequest
	err error
}

func (f *fakeService) GetStudentReservations(_ context.Context, req *models.GetStudentReservationsRequest) (*models.ReservationListResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.ReservationListResponse{Items: []models.ReservationListItem{}}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func serve(svc *fakeService, target string, userID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if userID > 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	NewHandler(svc, nopLogger{}).Handle(rec, req)
	return rec
}

func TestHandle_PassesStatusFilter(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, "/api/v1/reservations/me?status=cancelled", 7)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"total_count":0}`, rec.Body.String())
	require.NotNil(t, svc.got.Status)
	assert.Equal(t, "cancelled", *svc.got.Status)
	assert.Equal(t, int64(7), svc.got.StudentID)
}

func TestHandle_NoFilter(t *testing.T) {
	svc := &fakeService{}

	serve(svc, "/api/v1/reservations/me", 7)

	assert.Nil(t, svc.got.Status)
}

func TestHandle_Errors(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, serve(&fakeService{}, "/api/v1/reservations/me", 0).Code)

	invalid := &fakeService{err: fmt.Errorf("%w: invalid status", reservations.ErrInvalidInput)}
	assert.Equal(t, http.StatusBadRequest, serve(invalid, "/api/v1/reservations/me?status=done", 7).Code)

	broken := &fakeService{err: errors.New("boom")}
	assert.Equal(t, http.StatusInternalServerError, serve(broken, "/api/v1/reservations/me", 7).Code)
}
