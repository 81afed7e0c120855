// Package discovery provides mDNS announcement and discovery for PrintBridge.
//
// The service registers itself as a "_printbridge._tcp" instance in the
// "local." domain when started with mDNS enabled. The scanner side browses
// for those instances so a client on another machine can locate a running
// service without knowing its address.
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Broadcasts mDNS queries on the local network
//  2. Listens for "_printbridge._tcp" advertisements
//  3. Collects instance name, address, port, and TXT metadata
//  4. Returns the list of discovered services after the timeout period
//
// # Usage Example
//
//	// Discover services with a 5-second timeout
//	services, err := discovery.Scan(5 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, svc := range services {
//	    fmt.Printf("Found: %s at %s (version %s)\n",
//	        svc.Instance, svc.BaseURL(), svc.Version())
//	}
//
// # Announcement
//
//	announcer, err := discovery.Announce("", port)
//	if err == nil {
//	    defer announcer.Shutdown()
//	}
//
// TXT records carry "version=<service version>" and "api=/printer".
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Services must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can
// run simultaneously without interference.
package discovery
