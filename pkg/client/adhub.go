package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"adhub/pkg/model"
)

type Metadata struct {
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int64 `json:"offset"`
}

// APIError is a non-2xx reply decoded from the service's error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

// AdHubClient is a typed client for the ad space and booking request API.
type AdHubClient struct {
	httpClient *HttpClient
}

func NewAdHubClient(baseURL string) *AdHubClient {
	return &AdHubClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *AdHubClient) HTTP() *HttpClient {
	return c.httpClient
}

func (c *AdHubClient) ListAvailableAdSpaces(ctx context.Context, filter model.AdSpaceFilter, limit int, offset int64) ([]*model.AdSpace, *Metadata, error) {
	q := url.Values{}
	if filter.Type != "" {
		q.Set("type", string(filter.Type))
	}
	if filter.City != "" {
		q.Set("city", filter.City)
	}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.FormatInt(offset, 10))

	resp, err := c.httpClient.GET(ctx, "/api/v1/ad-spaces?"+q.Encode())
	if err != nil {
		return nil, nil, err
	}
	var spaces []*model.AdSpace
	meta, err := decodePage(resp, &spaces)
	return spaces, meta, err
}

func (c *AdHubClient) GetAdSpace(ctx context.Context, id string) (*model.AdSpace, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/ad-spaces/id/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var space model.AdSpace
	if err := decodeData(resp, http.StatusOK, &space); err != nil {
		return nil, err
	}
	return &space, nil
}

// CreateBooking submits a booking request. A non-empty idempotencyKey makes retries safe.
func (c *AdHubClient) CreateBooking(ctx context.Context, req *model.CreateBookingRequest, idempotencyKey string) (*model.Booking, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{HeaderIdempotencyKey: idempotencyKey}
	}
	resp, err := c.httpClient.POST(ctx, "/api/v1/booking-requests", req, headers)
	if err != nil {
		return nil, err
	}
	var booking model.Booking
	if err := decodeData(resp, http.StatusCreated, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *AdHubClient) ListBookings(ctx context.Context, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, *Metadata, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.FormatInt(offset, 10))

	resp, err := c.httpClient.GET(ctx, "/api/v1/booking-requests?"+q.Encode())
	if err != nil {
		return nil, nil, err
	}
	var bookings []*model.Booking
	meta, err := decodePage(resp, &bookings)
	return bookings, meta, err
}

func (c *AdHubClient) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/booking-requests/id/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var booking model.Booking
	if err := decodeData(resp, http.StatusOK, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *AdHubClient) ApproveBooking(ctx context.Context, id string) (*model.Booking, error) {
	return c.transition(ctx, id, "approve")
}

func (c *AdHubClient) RejectBooking(ctx context.Context, id string) (*model.Booking, error) {
	return c.transition(ctx, id, "reject")
}

func (c *AdHubClient) transition(ctx context.Context, id, action string) (*model.Booking, error) {
	path := "/api/v1/booking-requests/id/" + url.PathEscape(id) + "/" + action
	resp, err := c.httpClient.PATCH(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var booking model.Booking
	if err := decodeData(resp, http.StatusOK, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func decodeData(resp *Response, wantStatus int, target any) error {
	if resp.StatusCode != wantStatus {
		return toAPIError(resp)
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return fmt.Errorf("could not decode response wrapper:\n%s\n%w", resp.ToString(), err)
	}
	if err := json.Unmarshal(wrapper.Data, target); err != nil {
		return fmt.Errorf("could not decode response data:\n%s\n%w", resp.ToString(), err)
	}
	return nil
}

func decodePage(resp *Response, target any) (*Metadata, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, toAPIError(resp)
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
		Metadata
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode paginated resp:\n%s\n%w", resp.ToString(), err)
	}
	if err := json.Unmarshal(wrapper.Data, target); err != nil {
		return nil, fmt.Errorf("could not decode page data:\n%s\n%w", resp.ToString(), err)
	}
	meta := wrapper.Metadata
	return &meta, nil
}

func toAPIError(resp *Response) error {
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = resp.DecodeJSON(&body)
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       body.Code,
		Message:    GetErrorMessage(resp),
	}
}
