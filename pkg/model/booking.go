package model

import (
	"time"
)

type Booking struct {
	ID              string        `json:"id,omitempty" bson:"_id,omitempty" gorm:"primaryKey;type:varchar(64)"`
	AdSpaceID       string        `json:"ad_space_id" bson:"ad_space_id" gorm:"type:varchar(64);not null;index:idx_bookings_overlap,priority:1"`
	AdSpaceName     string        `json:"ad_space_name" bson:"ad_space_name" gorm:"type:varchar(200)"`
	AdvertiserName  string        `json:"advertiser_name" bson:"advertiser_name" gorm:"type:varchar(100);not null"`
	AdvertiserEmail string        `json:"advertiser_email" bson:"advertiser_email" gorm:"type:varchar(254);not null"`
	StartDate       Date          `json:"start_date" bson:"start_date" gorm:"type:date;not null;index:idx_bookings_overlap,priority:3"`
	EndDate         Date          `json:"end_date" bson:"end_date" gorm:"type:date;not null;index:idx_bookings_overlap,priority:4"`
	Status          BookingStatus `json:"status" bson:"status" gorm:"type:varchar(32);not null;index:idx_bookings_overlap,priority:2;index:idx_bookings_status"`
	TotalCost       Money         `json:"total_cost" bson:"total_cost" gorm:"type:numeric(12,2);not null"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
}

func (Booking) TableName() string { return "booking_requests" }

// Days is the inclusive length of the booked range.
func (b *Booking) Days() int {
	return InclusiveDays(b.StartDate, b.EndDate)
}

type CreateBookingRequest struct {
	AdSpaceID       string `json:"ad_space_id" validate:"required,max=64"`
	AdvertiserName  string `json:"advertiser_name" validate:"required,min=2,max=100"`
	AdvertiserEmail string `json:"advertiser_email" validate:"required,email,max=254"`
	StartDate       Date   `json:"start_date" validate:"required"`
	EndDate         Date   `json:"end_date" validate:"required"`
}
