package validator

import (
	"bytes"
	"io"
	"testing"
	"time"

	"adhub/pkg/logger"
	"adhub/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		AdSpaceID:       "665f1c2e9b1e8a3d4c5b6a79",
		AdvertiserName:  "Acme Co",
		AdvertiserEmail: "ads@acme.test",
		StartDate:       model.NewDate(2030, time.January, 1),
		EndDate:         model.NewDate(2030, time.January, 7),
	}
}

func newTestValidator() *BookingValidator {
	return NewBookingValidator(logger.New(logger.Config{Output: io.Discard}))
}

func TestValidateCreate_Valid(t *testing.T) {
	assert.NoError(t, newTestValidator().ValidateCreate(validRequest()))
}

func TestValidateCreate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.CreateBookingRequest)
		field  string
	}{
		{"missing ad space", func(r *model.CreateBookingRequest) { r.AdSpaceID = "" }, "ad_space_id"},
		{"short name", func(r *model.CreateBookingRequest) { r.AdvertiserName = "A" }, "advertiser_name"},
		{"bad email", func(r *model.CreateBookingRequest) { r.AdvertiserEmail = "not-an-email" }, "advertiser_email"},
		{"missing start", func(r *model.CreateBookingRequest) { r.StartDate = model.Date{} }, "start_date"},
		{"missing end", func(r *model.CreateBookingRequest) { r.EndDate = model.Date{} }, "end_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := newTestValidator().ValidateCreate(req)
			require.Error(t, err)

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
			assert.Contains(t, verrs.Fields(), tt.field)
		})
	}
}

func TestValidateCreate_LogsRejectedFields(t *testing.T) {
	var buf bytes.Buffer
	v := NewBookingValidator(logger.New(logger.Config{Output: &buf, Level: logger.DEBUG}))

	req := validRequest()
	req.AdvertiserEmail = "not-an-email"
	require.Error(t, v.ValidateCreate(req))

	assert.Contains(t, buf.String(), "Booking request failed validation")
	assert.Contains(t, buf.String(), "advertiser_email")

	buf.Reset()
	require.NoError(t, v.ValidateCreate(validRequest()))
	assert.Empty(t, buf.String())
}
