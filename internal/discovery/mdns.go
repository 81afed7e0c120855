package discovery

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/printbridge/internal/version"
)

const (
	// ServiceType is the mDNS service type PrintBridge advertises as
	ServiceType = "_printbridge._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for service discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultServicePort is assumed when an entry carries no port
	DefaultServicePort = 6789
)

// Scanner handles mDNS service discovery
type Scanner struct {
	// Timeout is the maximum time to wait for service discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan discovers all PrintBridge services on the local network
// Returns a list of discovered services or an error
func (s *Scanner) Scan() ([]*Service, error) {
	return s.ScanWithContext(context.Background())
}

// ScanWithContext discovers services with a custom context
func (s *Scanner) ScanWithContext(ctx context.Context) ([]*Service, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	services := make([]*Service, 0)
	collected := make(chan struct{})

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Collect entries until the browser closes the channel
	go func() {
		defer close(collected)
		for entry := range entries {
			service := s.parseServiceEntry(entry)
			if service != nil {
				services = append(services, service)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for the timeout, then for the collector to drain
	<-ctx.Done()
	<-collected

	return services, nil
}

// parseServiceEntry converts a zeroconf service entry to a Service
// Returns nil if the entry carries no usable address
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Service {
	if entry == nil {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultServicePort
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Service{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Scan is a convenience function to scan for services with a custom timeout
func Scan(timeout time.Duration) ([]*Service, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Scan()
}

// Announcer keeps an mDNS registration alive until Shutdown
type Announcer struct {
	server *zeroconf.Server
}

// Announce registers a PrintBridge service instance on the local network.
// An empty instance name derives one from the hostname. The TXT records
// carry the service version and API prefix.
func Announce(instance string, port int) (*Announcer, error) {
	if instance == "" {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			instance = "printbridge"
		} else {
			instance = "printbridge-" + hostname
		}
	}

	txt := []string{
		"version=" + version.Version,
		"api=/printer",
	}

	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	return &Announcer{server: server}, nil
}

// Shutdown withdraws the registration. Safe to call on a nil announcer.
func (a *Announcer) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
}
