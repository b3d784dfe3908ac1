// ABOUTME: Web server CLI command
// ABOUTME: Serves the browser UI and JSON API until interrupted
package cli

import (
	"flag"

	"github.com/charmbracelet/log"
	"github.com/harperreed/reportmaster/app"
	"github.com/harperreed/reportmaster/web"
)

// WebCommand starts the HTTP server. addr and secret are the configured
// defaults; --addr overrides the listen address.
func WebCommand(state *app.State, addr, secret string, args []string) error {
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	listen := fs.String("addr", addr, "Listen address")
	_ = fs.Parse(args)

	if secret == "" {
		log.Warn("REPORTMASTER_SESSION_SECRET not set, sessions end when the server stops")
	}

	server, err := web.NewServer(state, []byte(secret))
	if err != nil {
		return err
	}
	return server.Start(*listen)
}
