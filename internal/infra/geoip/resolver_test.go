package geoip

import (
	"errors"
	"testing"
)

func TestNewResolverEmptyPathDisables(t *testing.T) {
	r, err := NewResolver("  ")
	if err != nil || r != nil {
		t.Fatalf("NewResolver(empty) = %v, %v", r, err)
	}
}

func TestNewResolverMissingFile(t *testing.T) {
	if _, err := NewResolver("/nonexistent/GeoLite2-Country.mmdb"); err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestCountryCodeWithoutDatabase(t *testing.T) {
	var r *Resolver

	tests := []struct {
		name    string
		ip      string
		wantErr error
		anyErr  bool
	}{
		{name: "loopback skips lookup", ip: "127.0.0.1"},
		{name: "private skips lookup", ip: "10.1.2.3"},
		{name: "ipv6 loopback", ip: "::1"},
		{name: "public needs database", ip: "203.0.113.5", wantErr: ErrUnavailable},
		{name: "garbage", ip: "not-an-ip", anyErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, err := r.CountryCode(tc.ip)
			switch {
			case tc.anyErr:
				if err == nil {
					t.Fatal("expected error")
				}
			case tc.wantErr != nil:
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
			default:
				if err != nil || code != "" {
					t.Fatalf("CountryCode = %q, %v", code, err)
				}
			}
		})
	}
}
