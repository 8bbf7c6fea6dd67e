package core

import (
	"fmt"
	"sort"
	"strings"
)

// Credentials identify a relational server. They carry no database name;
// the database is chosen per operation.
type Credentials struct {
	Type     string
	Host     string
	Port     int
	User     string
	Password string
	Options  map[string]string
}

// Target renders the credentials as type://user@host:port without the password.
func (c Credentials) Target() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	if c.Port == 0 {
		return fmt.Sprintf("%s://%s@%s", c.Type, c.User, host)
	}
	return fmt.Sprintf("%s://%s@%s:%d", c.Type, c.User, host, c.Port)
}

// String implements fmt.Stringer and never includes the password.
func (c Credentials) String() string {
	if len(c.Options) == 0 {
		return c.Target()
	}
	keys := make([]string, 0, len(c.Options))
	for k := range c.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+c.Options[k])
	}
	return c.Target() + "?" + strings.Join(pairs, "&")
}

// AdapterConfig holds configuration for a single adapter connection.
// An empty Database connects to the server without selecting one.
type AdapterConfig struct {
	Credentials
	Database string
}
