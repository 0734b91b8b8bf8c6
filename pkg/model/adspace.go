package model

import "time"

type AdSpace struct {
	ID          string        `json:"id,omitempty" bson:"_id,omitempty" gorm:"primaryKey;type:varchar(64)"`
	Name        string        `json:"name" bson:"name" gorm:"type:varchar(200);not null" validate:"required,min=2,max=200"`
	Type        AdSpaceType   `json:"type" bson:"type" gorm:"type:varchar(32);not null;index:idx_ad_spaces_listing,priority:2" validate:"required,ad_space_type"`
	City        string        `json:"city" bson:"city" gorm:"type:varchar(100);not null;index:idx_ad_spaces_listing,priority:3" validate:"required,min=2,max=100"`
	Address     string        `json:"address" bson:"address" gorm:"type:varchar(300);not null" validate:"required,min=2,max=300"`
	PricePerDay Money         `json:"price_per_day" bson:"price_per_day" gorm:"type:numeric(12,2);not null"`
	Status      AdSpaceStatus `json:"status" bson:"status" gorm:"type:varchar(32);not null;index:idx_ad_spaces_listing,priority:1" validate:"required,ad_space_status"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at"`
}

func (AdSpace) TableName() string { return "ad_spaces" }

// AdSpaceFilter narrows the available inventory listing. Empty fields do not filter.
type AdSpaceFilter struct {
	Type AdSpaceType
	City string
}
