// Package domain parses and validates vendor domain input before an
// assessment run starts. Input may be a bare domain, a URL, or an email
// address; the parser reduces all three to a registrable domain plus the
// vendor's short name used for path guessing during discovery.
package domain

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Vendor contains the parsed identity of a vendor derived from caller input
type Vendor struct {
	// Domain is the cleaned host the input resolved to
	Domain string `json:"domain"`
	// Registrable is the eTLD+1 (example.com for www.example.com)
	Registrable string `json:"registrable"`
	// Subdomain is the label prefix before the registrable domain, if any
	Subdomain string `json:"subdomain,omitempty"`
	// TLD is the effective public suffix (com, co.uk)
	TLD string `json:"tld"`
	// ShortName is the second-level label, used to generate vendor-specific
	// discovery paths like /legal/<shortname>-gdpr
	ShortName string `json:"short_name"`
	// DisplayName is the title-cased short name used in generated messages
	DisplayName string `json:"display_name"`
}

// Parse extracts vendor identity from a domain, URL, or email address
func Parse(input string) (*Vendor, error) {
	input = strings.ToLower(strings.TrimSpace(input))

	if strings.Contains(input, "@") {
		parts := strings.Split(input, "@")
		if len(parts) != 2 || parts[1] == "" {
			return nil, ErrInvalidEmailFormat
		}

		input = parts[1]
	}

	if strings.Contains(input, "://") {
		u, err := url.Parse(input)
		if err != nil || u.Host == "" {
			return nil, ErrInvalidURLFormat
		}

		input = u.Host
	}

	// Strip port if present
	if idx := strings.LastIndex(input, ":"); idx != -1 {
		input = input[:idx]
	}

	if input == "" || !strings.Contains(input, ".") {
		return nil, ErrInvalidDomainFormat
	}

	registrable, err := publicsuffix.EffectiveTLDPlusOne(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDomainFormat, err)
	}

	tld, _ := publicsuffix.PublicSuffix(input)
	shortName := strings.TrimSuffix(registrable, "."+tld)

	subdomain := ""
	if input != registrable {
		subdomain = strings.TrimSuffix(input, "."+registrable)
	}

	return &Vendor{
		Domain:      input,
		Registrable: registrable,
		Subdomain:   subdomain,
		TLD:         tld,
		ShortName:   shortName,
		DisplayName: titleCase(shortName),
	}, nil
}

// titleCase uppercases the first letter of each hyphen-separated label
func titleCase(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}

		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}

	return strings.Join(parts, " ")
}
