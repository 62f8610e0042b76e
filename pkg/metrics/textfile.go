// Package metrics exports the process registry for node_exporter's textfile
// collector, since a CLI run ends before anything could scrape it.
package metrics

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes every metric gathered from g to path. An empty path
// is a no-op. A nil gatherer means prometheus.DefaultGatherer.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, g)
}
