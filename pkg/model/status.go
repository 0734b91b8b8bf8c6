package model

import (
	"fmt"
	"strings"
)

type AdSpaceType string

const (
	AdSpaceTypeBillboard     AdSpaceType = "BILLBOARD"
	AdSpaceTypeDigitalScreen AdSpaceType = "DIGITAL_SCREEN"
	AdSpaceTypeTransit       AdSpaceType = "TRANSIT"
	AdSpaceTypeBusStop       AdSpaceType = "BUS_STOP"
	AdSpaceTypeMallDisplay   AdSpaceType = "MALL_DISPLAY"
)

var AdSpaceTypes = []AdSpaceType{
	AdSpaceTypeBillboard,
	AdSpaceTypeDigitalScreen,
	AdSpaceTypeTransit,
	AdSpaceTypeBusStop,
	AdSpaceTypeMallDisplay,
}

func (t AdSpaceType) Valid() bool {
	switch t {
	case AdSpaceTypeBillboard, AdSpaceTypeDigitalScreen, AdSpaceTypeTransit, AdSpaceTypeBusStop, AdSpaceTypeMallDisplay:
		return true
	}
	return false
}

// ParseAdSpaceType is case-insensitive and trims surrounding whitespace.
func ParseAdSpaceType(s string) (AdSpaceType, error) {
	t := AdSpaceType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("invalid ad space type: %q", s)
	}
	return t, nil
}

type AdSpaceStatus string

const (
	AdSpaceAvailable   AdSpaceStatus = "AVAILABLE"
	AdSpaceBooked      AdSpaceStatus = "BOOKED"
	AdSpaceUnavailable AdSpaceStatus = "UNAVAILABLE"
)

func (s AdSpaceStatus) Valid() bool {
	switch s {
	case AdSpaceAvailable, AdSpaceBooked, AdSpaceUnavailable:
		return true
	}
	return false
}

type BookingStatus string

const (
	BookingPending  BookingStatus = "PENDING"
	BookingApproved BookingStatus = "APPROVED"
	BookingRejected BookingStatus = "REJECTED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed out of s.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingApproved, BookingRejected:
		return true
	case BookingPending:
		return false
	}
	return true
}

// CanTransitionTo encodes the booking state machine:
// PENDING -> APPROVED | REJECTED, nothing out of a terminal state.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingApproved || next == BookingRejected
	case BookingApproved, BookingRejected:
		return false
	}
	return false
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	st := BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("invalid booking status: %q", s)
	}
	return st, nil
}
