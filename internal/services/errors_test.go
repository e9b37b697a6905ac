package services_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"streamfinder/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrUpstream, "catalog", "discover", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"catalog", "discover", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestUpstreamMarker(t *testing.T) {
	if marker := services.UpstreamMarker(fmt.Errorf("call: %w", context.DeadlineExceeded)); marker != services.ErrTimeout {
		t.Fatalf("expected timeout marker, got %v", marker)
	}
	if marker := services.UpstreamMarker(errors.New("connection reset")); marker != services.ErrUpstream {
		t.Fatalf("expected upstream marker, got %v", marker)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{services.Wrap(services.ErrValidation, "web", "search", "missing service", nil), http.StatusBadRequest},
		{services.Wrap(services.ErrNotFound, "lookup", "genre", "no match", nil), http.StatusNotFound},
		{services.Wrap(services.ErrTimeout, "catalog", "details", "slow", nil), http.StatusGatewayTimeout},
		{services.Wrap(services.ErrUpstream, "availability", "get", "500", nil), http.StatusBadGateway},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := services.HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
