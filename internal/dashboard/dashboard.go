// Package dashboard embeds a live HTTP stats page for a long-running
// simulation. It reports process-level runtime stats (goroutines, heap,
// GC pauses) for the duration of a run, the same operational concern the
// teacher addresses by exposing Metrics/Observer for its own I/O path
// (backend.go), here surfaced as a live page instead of only a final
// snapshot.
package dashboard

import "github.com/go-echarts/statsview"

// Server owns the embedded statsview HTTP server's lifecycle.
type Server struct {
	viewer statsview.Viewer
}

// Start binds and serves the dashboard at addr in the background. The
// returned Server must be Stopped once the run completes or is
// cancelled.
func Start(addr string) *Server {
	viewer := statsview.New(statsview.WithAddr(addr))
	go viewer.Start()
	return &Server{viewer: viewer}
}

// Stop shuts the dashboard's HTTP server down, best-effort.
func (s *Server) Stop() {
	if s.viewer != nil {
		s.viewer.Stop()
	}
}
