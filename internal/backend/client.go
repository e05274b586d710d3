// Package backend talks to the booking REST backend and turns its envelopes
// into canonical reservations and typed errors.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"travelbooking/internal/domain"
	"travelbooking/internal/domain/reservation"
	"travelbooking/internal/domain/session"
	"travelbooking/internal/pkg/apperr"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const maxResponseBytes = 8 << 20

var (
	_ reservation.Backend   = (*Client)(nil)
	_ session.Authenticator = (*Client)(nil)
)

// endpoints is the path family for one record kind.
type endpoints struct {
	mine         string
	incoming     string
	item         string
	statusMethod string
}

var routes = map[domain.RecordKind]endpoints{
	domain.RecordService: {
		mine:         "/api/v1/reservations/me",
		incoming:     "/api/v1/reservations/provider",
		item:         "/api/v1/reservations",
		statusMethod: http.MethodPatch,
	},
	domain.RecordLegacyVehicle: {
		mine:         "/api/v1/vehicle-bookings/me",
		incoming:     "/api/v1/vehicle-bookings/provider",
		item:         "/api/v1/vehicle-bookings",
		statusMethod: http.MethodPut,
	},
}

type Client struct {
	rest *RESTClient
	log  *logrus.Entry
}

func NewClient(baseURL string, timeout time.Duration, httpClient *http.Client, log *logrus.Logger) *Client {
	return &Client{
		rest: NewRESTClient(baseURL, timeout, httpClient),
		log:  log.WithField("component", "backend_client"),
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (*session.Credentials, error) {
	data, err := c.do(ctx, "login", http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var creds session.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, &apperr.NetworkError{Op: "login", Err: fmt.Errorf("decode credentials: %w", err)}
	}
	if creds.Token == "" || creds.User.ID == "" {
		return nil, &apperr.BackendError{Status: http.StatusBadGateway, Message: "Sign in failed. Please try again."}
	}
	return &creds, nil
}

func (c *Client) GetService(ctx context.Context, serviceType domain.ServiceType, id string) ([]byte, error) {
	endpoint := path.Join("/api/v1/services", string(serviceType), url.PathEscape(id))
	return c.do(ctx, "get service", http.MethodGet, endpoint, "", nil)
}

func (c *Client) CreateReservation(ctx context.Context, token string, payload *reservation.CreatePayload) (*domain.Reservation, error) {
	data, err := c.do(ctx, "create reservation", http.MethodPost, routes[domain.RecordService].item, token, payload)
	if err != nil {
		return nil, err
	}
	return decodeReservation(domain.RecordService, data)
}

func (c *Client) ListReservations(ctx context.Context, token string, audience reservation.Audience, src reservation.Source) ([]domain.Reservation, error) {
	ep, ok := routes[src.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown record kind %q", src.Kind)
	}
	endpoint := ep.mine
	if audience == reservation.AudienceProvider {
		endpoint = ep.incoming
	}
	if src.Kind == domain.RecordService && src.ServiceType != "" {
		endpoint += "?" + url.Values{"type": {string(src.ServiceType)}}.Encode()
	}

	data, err := c.do(ctx, "list "+src.Name, http.MethodGet, endpoint, token, nil)
	if err != nil {
		return nil, err
	}

	if src.Kind == domain.RecordLegacyVehicle {
		items, err := reservation.AdaptLegacyVehicleList(data)
		if err != nil {
			return nil, &apperr.NetworkError{Op: "list " + src.Name, Err: err}
		}
		return items, nil
	}

	var items []domain.Reservation
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &apperr.NetworkError{Op: "list " + src.Name, Err: fmt.Errorf("decode reservations: %w", err)}
	}
	for i := range items {
		if items[i].RecordKind == "" {
			items[i].RecordKind = domain.RecordService
		}
	}
	return items, nil
}

func (c *Client) GetReservation(ctx context.Context, token string, ref domain.ReservationRef) (*domain.Reservation, error) {
	ep, ok := routes[ref.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown record kind %q", ref.Kind)
	}
	data, err := c.do(ctx, "get reservation", http.MethodGet, path.Join(ep.item, url.PathEscape(ref.ID)), token, nil)
	if err != nil {
		return nil, err
	}
	return decodeReservation(ref.Kind, data)
}

func (c *Client) UpdateReservationStatus(ctx context.Context, token string, ref domain.ReservationRef, update reservation.StatusUpdate) error {
	ep, ok := routes[ref.Kind]
	if !ok {
		return fmt.Errorf("unknown record kind %q", ref.Kind)
	}
	var body any = update
	if ref.Kind == domain.RecordLegacyVehicle {
		body = reservation.LegacyStatusBody(update)
	}
	_, err := c.do(ctx, "update status", ep.statusMethod, path.Join(ep.item, url.PathEscape(ref.ID), "status"), token, body)
	return err
}

func (c *Client) DeleteReservation(ctx context.Context, token string, ref domain.ReservationRef) error {
	ep, ok := routes[ref.Kind]
	if !ok {
		return fmt.Errorf("unknown record kind %q", ref.Kind)
	}
	_, err := c.do(ctx, "delete reservation", http.MethodDelete, path.Join(ep.item, url.PathEscape(ref.ID)), token, nil)
	return err
}

// do sends one request and unwraps the {success, data, message} envelope.
func (c *Client) do(ctx context.Context, op, method, endpoint, token string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.rest.NewRequest(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if trimmed := strings.TrimSpace(token); trimmed != "" {
		req.Header.Set("Authorization", "Bearer "+trimmed)
	}

	start := time.Now()
	res, err := c.rest.Do(req)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{"op": op, "url": req.URL.Path}).Warn("backend request failed")
		return nil, &apperr.NetworkError{Op: op, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, &apperr.NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	c.log.WithFields(logrus.Fields{
		"op":      op,
		"method":  method,
		"url":     req.URL.Path,
		"status":  res.StatusCode,
		"latency": time.Since(start),
	}).Debug("backend response")

	return unwrapEnvelope(res.StatusCode, raw)
}

func unwrapEnvelope(status int, raw []byte) (json.RawMessage, error) {
	valid := gjson.ValidBytes(raw)
	if status < 200 || status > 299 {
		msg := ""
		if valid {
			msg = extractMessage(raw)
		}
		return nil, &apperr.BackendError{Status: status, Message: msg}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	if !valid {
		return nil, &apperr.NetworkError{Op: "decode response", Err: fmt.Errorf("malformed JSON (status %d)", status)}
	}

	doc := gjson.ParseBytes(raw)
	if s := doc.Get("success"); s.Exists() && !s.Bool() {
		return nil, &apperr.BackendError{Status: status, Message: extractMessage(raw)}
	}
	if data := doc.Get("data"); data.Exists() {
		return json.RawMessage(data.Raw), nil
	}
	return json.RawMessage(raw), nil
}

// extractMessage pulls the user-facing text out of an error envelope.
func extractMessage(raw []byte) string {
	for _, p := range []string{"message", "error.message", "error", "msg"} {
		if v := gjson.GetBytes(raw, p); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			return strings.TrimSpace(v.String())
		}
	}
	return ""
}

func decodeReservation(kind domain.RecordKind, data []byte) (*domain.Reservation, error) {
	if kind == domain.RecordLegacyVehicle {
		r, err := reservation.AdaptLegacyVehicleBytes(data)
		if err != nil {
			return nil, &apperr.NetworkError{Op: "decode legacy booking", Err: err}
		}
		return r, nil
	}
	var r domain.Reservation
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &apperr.NetworkError{Op: "decode reservation", Err: err}
	}
	if r.RecordKind == "" {
		r.RecordKind = kind
	}
	return &r, nil
}
