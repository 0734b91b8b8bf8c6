package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "adhub/pkg/errors"
	"adhub/pkg/logger"
	"adhub/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	gotReq    *model.CreateBookingRequest
	gotToday  model.Date
	gotStatus *model.BookingStatus
	gotID     string
	err       error
}

func (s *stubService) Create(_ context.Context, req *model.CreateBookingRequest, today model.Date) (*model.Booking, error) {
	s.gotReq, s.gotToday = req, today
	if s.err != nil {
		return nil, s.err
	}
	return &model.Booking{
		ID:        "b1",
		AdSpaceID: req.AdSpaceID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    model.BookingPending,
		TotalCost: model.MustMoney("800"),
	}, nil
}

func (s *stubService) GetByID(_ context.Context, id string) (*model.Booking, error) {
	s.gotID = id
	if s.err != nil {
		return nil, s.err
	}
	return &model.Booking{ID: id, Status: model.BookingPending}, nil
}

func (s *stubService) List(_ context.Context, status *model.BookingStatus, _ int, _ int64) ([]*model.Booking, int64, error) {
	s.gotStatus = status
	if s.err != nil {
		return nil, 0, s.err
	}
	return []*model.Booking{{ID: "b1"}, {ID: "b2"}}, 2, nil
}

func (s *stubService) Approve(_ context.Context, id string) (*model.Booking, error) {
	s.gotID = id
	if s.err != nil {
		return nil, s.err
	}
	return &model.Booking{ID: id, Status: model.BookingApproved}, nil
}

func (s *stubService) Reject(_ context.Context, id string) (*model.Booking, error) {
	s.gotID = id
	if s.err != nil {
		return nil, s.err
	}
	return &model.Booking{ID: id, Status: model.BookingRejected}, nil
}

func newRouter(svc *stubService, now time.Time) *httprouter.Router {
	loc, _ := time.LoadLocation("Asia/Bangkok")
	h := NewBookingHandler(svc, logger.New(logger.Config{Output: io.Discard}), loc)
	h.now = func() time.Time { return now }
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreate_Created(t *testing.T) {
	svc := &stubService{}
	// 20:00 UTC is already the next day in Bangkok
	now := time.Date(2030, 1, 9, 20, 0, 0, 0, time.UTC)
	body := `{"ad_space_id":"a1","advertiser_name":"Acme","advertiser_email":"ads@acme.test","start_date":"2030-02-01","end_date":"2030-02-08"}`

	rec := httptest.NewRecorder()
	newRouter(svc, now).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/booking-requests", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, model.NewDate(2030, time.January, 10), svc.gotToday)
	assert.Equal(t, "a1", svc.gotReq.AdSpaceID)
	assert.Equal(t, model.NewDate(2030, time.February, 1), svc.gotReq.StartDate)

	var resp struct {
		Data model.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "b1", resp.Data.ID)
	assert.Equal(t, model.BookingPending, resp.Data.Status)
	assert.True(t, resp.Data.TotalCost.Equal(model.MustMoney("800")))
}

func TestCreate_BadBody(t *testing.T) {
	for name, body := range map[string]string{
		"not json":  `{"ad_space_id":`,
		"bad date":  `{"ad_space_id":"a1","start_date":"01/02/2030"}`,
		"date type": `{"ad_space_id":"a1","start_date":20300201}`,
	} {
		t.Run(name, func(t *testing.T) {
			svc := &stubService{}
			rec := httptest.NewRecorder()
			newRouter(svc, time.Now()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/booking-requests", strings.NewReader(body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, apperrors.CodeInvalidInput, decodeError(t, rec).Code)
			assert.Nil(t, svc.gotReq)
		})
	}
}

func TestCreate_ServiceError(t *testing.T) {
	svc := &stubService{err: apperrors.Validation("minimum booking duration is 7 days", nil)}
	body := `{"ad_space_id":"a1","advertiser_name":"Acme","advertiser_email":"ads@acme.test","start_date":"2030-02-01","end_date":"2030-02-05"}`

	rec := httptest.NewRecorder()
	newRouter(svc, time.Now()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/booking-requests", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errBody := decodeError(t, rec)
	assert.Equal(t, apperrors.CodeValidation, errBody.Code)
	assert.Equal(t, "minimum booking duration is 7 days", errBody.Message)
}

func TestList_StatusFilter(t *testing.T) {
	svc := &stubService{}
	rec := httptest.NewRecorder()
	newRouter(svc, time.Now()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/booking-requests?status=approved", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.gotStatus)
	assert.Equal(t, model.BookingApproved, *svc.gotStatus)

	var body struct {
		Data       []model.Booking `json:"data"`
		TotalCount int64           `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.TotalCount)
	assert.Len(t, body.Data, 2)
}

func TestList_NoFilter(t *testing.T) {
	svc := &stubService{}
	rec := httptest.NewRecorder()
	newRouter(svc, time.Now()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/booking-requests", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.gotStatus)
}

func TestList_UnknownStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubService{}, time.Now()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/booking-requests?status=CANCELLED", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidInput, decodeError(t, rec).Code)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := &stubService{err: apperrors.NotFoundWithID("Booking", "missing")}
	rec := httptest.NewRecorder()
	newRouter(svc, time.Now()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/booking-requests/id/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "missing", svc.gotID)
}

func TestApproveAndReject(t *testing.T) {
	tests := []struct {
		path string
		want model.BookingStatus
	}{
		{"/api/v1/booking-requests/id/b1/approve", model.BookingApproved},
		{"/api/v1/booking-requests/id/b1/reject", model.BookingRejected},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			svc := &stubService{}
			rec := httptest.NewRecorder()
			newRouter(svc, time.Now()).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, tt.path, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "b1", svc.gotID)

			var resp struct {
				Data model.Booking `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Data.Status)
		})
	}
}

func TestApprove_InvalidTransition(t *testing.T) {
	svc := &stubService{err: apperrors.Validation("only PENDING bookings can be approved, current status: REJECTED", nil)}
	rec := httptest.NewRecorder()
	newRouter(svc, time.Now()).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/booking-requests/id/b1/approve", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestApprove_WrongMethod(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubService{}, time.Now()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/booking-requests/id/b1/approve", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
