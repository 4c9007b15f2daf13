package projectcli

import (
	"time"

	"golang.org/x/text/language"

	service "github.com/okian/outbreak/internal/app"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Config holds one CLI invocation.
type Config struct {
	BaseURL  string        // Remote server; empty runs the projection in-process
	Timeout  time.Duration // HTTP request timeout in remote mode
	Format   string        // table or json
	Language language.Tag  // number formatting of the table
	Request  service.Request
}

// Remote reports whether the projection runs on a server.
func (c *Config) Remote() bool {
	return c.BaseURL != ""
}
