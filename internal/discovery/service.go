package discovery

import (
	"fmt"
	"time"
)

// Service represents a PrintBridge service discovered on the local network
type Service struct {
	// Instance is the advertised instance name (e.g., "printbridge-officepc")
	Instance string

	// Hostname is the mDNS hostname (e.g., "officepc.local.")
	Hostname string

	// IP is the address the service resolves to, IPv4 preferred
	IP string

	// Port is the HTTP port the service listens on
	Port int

	// Metadata contains the mDNS TXT record data
	// Common fields: "version=1.2.0", "api=/printer"
	Metadata map[string]string

	// DiscoveredAt is when the service was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the service
func (s *Service) String() string {
	return fmt.Sprintf("PrintBridge %s (%s) at %s:%d", s.Instance, s.Hostname, s.IP, s.Port)
}

// BaseURL returns the HTTP base URL for the service
func (s *Service) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", s.IP, s.Port)
}

// GetMetadata retrieves a TXT record value by key, or returns empty string if not found
func (s *Service) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}

// Version returns the advertised service version, empty when not present
func (s *Service) Version() string {
	return s.GetMetadata("version")
}
