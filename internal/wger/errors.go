// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package wger

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/tidwall/gjson"
)

var (
	ErrNotFound = errors.New("not found")
)

// APIError is a failed call to the wger API. Status is 500 when no response
// was received at all.
type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (status %d, %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Is makes a 404 match ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

func newStatusError(resp *http.Response, body []byte, fallback string) *APIError {
	msg := ""
	for _, path := range []string{"detail", "message"} {
		if v := gjson.GetBytes(body, path); v.Exists() && v.String() != "" {
			msg = v.String()
			break
		}
	}
	if msg == "" {
		msg = fallback
	}

	code := "ERR_BAD_RESPONSE"
	if resp.StatusCode < http.StatusInternalServerError {
		code = "ERR_BAD_REQUEST"
	}
	return &APIError{Message: msg, Status: resp.StatusCode, Code: code}
}

func newTransportError(err error, fallback string) *APIError {
	code := "ERR_NETWORK"
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		code = "ECONNABORTED"
	}
	return &APIError{
		Message: fmt.Sprintf("%s: %v", fallback, err),
		Status:  http.StatusInternalServerError,
		Code:    code,
	}
}

// ErrorContext names what the caller was doing, for Friendly.
type ErrorContext string

const (
	ContextExercises ErrorContext = "exercises"
	ContextExercise  ErrorContext = "exercise"
	ContextLookup    ErrorContext = "lookup"
	ContextFavorites ErrorContext = "favorites"
)

// Friendly turns err into a message fit for a terminal user.
func Friendly(err error, ctx ErrorContext) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	switch {
	case errors.Is(err, ErrNotFound) && ctx == ContextExercise:
		return "Exercise not found. It may have been removed from wger."
	case errors.Is(err, ErrNotFound):
		return "The requested resource was not found."
	case errors.As(err, &apiErr) && apiErr.Code == "ECONNABORTED":
		return "The wger API took too long to answer. Please try again."
	case errors.As(err, &apiErr) && apiErr.Code == "ERR_NETWORK":
		return "Network error. Please check your internet connection."
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests:
		return "Too many requests to the wger API. Please wait a moment."
	case errors.As(err, &apiErr) && apiErr.Status >= http.StatusInternalServerError:
		return "The wger API is having trouble right now. Please try again later."
	}

	switch ctx {
	case ContextExercises:
		return "Failed to load exercises. Please try again."
	case ContextExercise:
		return "Failed to load the exercise. Please try again."
	case ContextLookup:
		return "Failed to load filter options. Please try again."
	case ContextFavorites:
		return "Failed to load favorites. Please try again."
	}
	return err.Error()
}
