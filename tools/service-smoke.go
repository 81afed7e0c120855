//go:build ignore

// Service smoke check: spawns a printbridge-server build, walks the API
// surface once, and reports what worked. Useful when qualifying a release
// build on a new platform.
//
// Usage:
//
//	go run tools/service-smoke.go -binary ./printbridge-server
//	go run tools/service-smoke.go -url http://127.0.0.1:6789
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/muurk/printbridge/internal/client"
)

func main() {
	binary := flag.String("binary", "printbridge-server", "service binary to spawn")
	url := flag.String("url", "", "attach to a running instance instead of spawning")
	keep := flag.Bool("keep", false, "leave a spawned service running on exit")
	flag.Parse()

	var c *client.Client
	if *url != "" {
		c = client.NewClientWithURL(*url)
	} else {
		c = client.NewClient(*binary)
	}

	ctx := context.Background()

	fmt.Println("== startup ==")
	handle, err := c.Start(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		fmt.Fprintln(os.Stderr, client.GetTroubleshootingHint(err))
		os.Exit(1)
	}
	if handle != nil {
		fmt.Printf("spawned pid %d at %s\n", handle.PID, handle.BaseURL)
		if !*keep {
			defer c.Stop()
		}
	} else {
		fmt.Printf("attached to %s\n", c.BaseURL)
	}

	pass := 0
	fail := 0
	check := func(name string, res client.CallResult) {
		if res.Err != nil {
			fail++
			fmt.Printf("FAIL %-10s %s (%s)\n", name, client.GetShortErrorMessage(res.Err), res.Elapsed.Round(time.Millisecond))
			return
		}
		pass++
		message := res.Message
		if message == "" {
			message = "ok"
		}
		fmt.Printf("ok   %-10s %s (%s)\n", name, message, res.Elapsed.Round(time.Millisecond))
	}

	fmt.Println("== api ==")
	_, res := c.Health(ctx)
	check("health", res)

	info, res := c.Info(ctx)
	check("info", res)
	if info != nil {
		fmt.Printf("     service %s %s on %s:%d\n", info.Name, info.Version, info.Host, info.Port)
	}

	_, res = c.Status(ctx)
	check("status", res)

	printers, res := c.ListPrinters(ctx)
	check("printers", res)
	for _, printer := range printers {
		fmt.Printf("     %s (%s)\n", printer.Name, printer.Status)
	}

	_, res = c.DefaultPrinter(ctx)
	check("default", res)

	_, res = c.TestPrinters(ctx)
	check("test", res)

	// Subscribe briefly so the event stream handshake is covered too
	eventCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	events := 0
	err = c.WatchEvents(eventCtx, func(client.Event) { events++ })
	cancel()
	if err != nil && eventCtx.Err() == nil {
		fail++
		fmt.Printf("FAIL %-10s %v\n", "events", err)
	} else {
		pass++
		fmt.Printf("ok   %-10s stream connected, %d event(s)\n", "events", events)
	}

	fmt.Printf("== done: %d ok, %d failed ==\n", pass, fail)
	if fail > 0 {
		os.Exit(1)
	}
}
