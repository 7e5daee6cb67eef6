package domain

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		wantDom   string
		wantReg   string
		wantShort string
		wantError bool
	}{
		{
			name:      "simple domain",
			input:     "example.com",
			wantDom:   "example.com",
			wantReg:   "example.com",
			wantShort: "example",
		},
		{
			name:      "www subdomain",
			input:     "www.example.com",
			wantDom:   "www.example.com",
			wantReg:   "example.com",
			wantShort: "example",
		},
		{
			name:      "trust subdomain",
			input:     "trust.example.com",
			wantDom:   "trust.example.com",
			wantReg:   "example.com",
			wantShort: "example",
		},
		{
			name:      "co.uk suffix",
			input:     "example.co.uk",
			wantDom:   "example.co.uk",
			wantReg:   "example.co.uk",
			wantShort: "example",
		},
		{
			name:      "email address",
			input:     "security@example.com",
			wantDom:   "example.com",
			wantReg:   "example.com",
			wantShort: "example",
		},
		{
			name:      "full url",
			input:     "https://www.example.com/trust",
			wantDom:   "www.example.com",
			wantReg:   "example.com",
			wantShort: "example",
		},
		{
			name:      "host with port",
			input:     "example.com:8443",
			wantDom:   "example.com",
			wantReg:   "example.com",
			wantShort: "example",
		},
		{
			name:      "hyphenated vendor name",
			input:     "acme-corp.io",
			wantDom:   "acme-corp.io",
			wantReg:   "acme-corp.io",
			wantShort: "acme-corp",
		},
		{
			name:      "uppercase input",
			input:     "Example.COM",
			wantDom:   "example.com",
			wantReg:   "example.com",
			wantShort: "example",
		},
		{
			name:      "empty input",
			input:     "",
			wantError: true,
		},
		{
			name:      "no dot",
			input:     "localhost",
			wantError: true,
		},
		{
			name:      "double at email",
			input:     "a@b@example.com",
			wantError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Parse(tc.input)

			if tc.wantError {
				if err == nil {
					t.Fatalf("Parse(%q): expected error, got %+v", tc.input, v)
				}

				return
			}

			if err != nil {
				t.Fatalf("Parse(%q): unexpected error: %v", tc.input, err)
			}

			if v.Domain != tc.wantDom {
				t.Errorf("Domain: expected %q, got %q", tc.wantDom, v.Domain)
			}

			if v.Registrable != tc.wantReg {
				t.Errorf("Registrable: expected %q, got %q", tc.wantReg, v.Registrable)
			}

			if v.ShortName != tc.wantShort {
				t.Errorf("ShortName: expected %q, got %q", tc.wantShort, v.ShortName)
			}
		})
	}
}

func TestParse_DisplayName(t *testing.T) {
	v, err := Parse("acme-corp.io")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.DisplayName != "Acme Corp" {
		t.Errorf("DisplayName: expected %q, got %q", "Acme Corp", v.DisplayName)
	}
}

func TestParse_ErrorKinds(t *testing.T) {
	if _, err := Parse("bad@@format.com"); !errors.Is(err, ErrInvalidEmailFormat) {
		t.Errorf("expected ErrInvalidEmailFormat, got %v", err)
	}

	if _, err := Parse("nodots"); !errors.Is(err, ErrInvalidDomainFormat) {
		t.Errorf("expected ErrInvalidDomainFormat, got %v", err)
	}
}
