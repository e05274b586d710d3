package apperr

import (
	"context"
	"errors"
	"net/http"

	"travelbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Info is the HTTP rendering of an error.
type Info struct {
	Status  int
	Code    string
	Message string
	Field   string
}

type mapping struct {
	err     error
	status  int
	code    string
	message string
}

// Mapper maps domain errors to HTTP status codes and messages.
type Mapper struct {
	mappings []mapping
	fallback string
}

func NewMapper(fallback string) *Mapper {
	if fallback == "" {
		fallback = "Something went wrong. Please try again."
	}
	return &Mapper{fallback: fallback}
}

// With registers a sentinel. Registered sentinels are checked in order.
func (m *Mapper) With(err error, status int, code, message string) *Mapper {
	m.mappings = append(m.mappings, mapping{err: err, status: status, code: code, message: message})
	return m
}

func (m *Mapper) Map(err error) Info {
	if err == nil {
		return Info{Status: http.StatusOK}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Info{Status: http.StatusGatewayTimeout, Code: "TIMEOUT", Message: "Request timed out. Please try again."}
	}
	if errors.Is(err, context.Canceled) {
		return Info{Status: http.StatusServiceUnavailable, Code: "CANCELLED", Message: "Request cancelled"}
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return Info{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: ve.Message, Field: ve.Field}
	}

	// the backend's own message wins over a registered sentinel it also matches
	var be *BackendError
	if errors.As(err, &be) {
		return m.backendInfo(be)
	}

	for _, mp := range m.mappings {
		if errors.Is(err, mp.err) {
			return Info{Status: mp.status, Code: mp.code, Message: mp.message}
		}
	}

	if errors.Is(err, ErrNetwork) {
		return Info{Status: http.StatusBadGateway, Code: "NETWORK_ERROR", Message: m.fallback}
	}

	return Info{Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: m.fallback}
}

func (m *Mapper) backendInfo(be *BackendError) Info {
	msg := be.Message
	if msg == "" {
		msg = m.fallback
	}
	switch {
	case be.Status == http.StatusUnauthorized:
		return Info{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: msg}
	case be.Status == http.StatusForbidden:
		return Info{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: msg}
	case be.Status == http.StatusNotFound:
		return Info{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: msg}
	case be.Status >= 400 && be.Status < 500:
		return Info{Status: be.Status, Code: "BACKEND_REJECTED", Message: msg}
	default:
		return Info{Status: http.StatusBadGateway, Code: "BACKEND_ERROR", Message: msg}
	}
}

// Respond writes the mapped error using the standard envelope.
func (m *Mapper) Respond(c *gin.Context, err error) {
	info := m.Map(err)
	if info.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	if info.Field != "" {
		response.ErrorWithDetails(c, info.Status, info.Code, info.Message, gin.H{"field": info.Field})
		return
	}
	response.Error(c, info.Status, info.Code, info.Message)
}
