package whois

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	lwhois "github.com/likexian/whois"
)

// ErrUnknownTLD is returned by Client.Resolve and Client.Lookup when no
// server is known for the domain's top-level domain.
var ErrUnknownTLD = errors.New("whois: no server for top-level domain")

// DefaultPort is the standard WHOIS port.
const DefaultPort = "43"

// Lookup performs a single registry request for domain and returns the raw reply.
type Lookup interface {
	Lookup(ctx context.Context, domain string) (string, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, domain string) (string, error)

func (f LookupFunc) Lookup(ctx context.Context, domain string) (string, error) {
	return f(ctx, domain)
}

// Server describes how to query one registry.
type Server struct {
	// Addr is host or host:port. The port defaults to DefaultPort.
	Addr string
	// Query is a fmt format with a single %s verb receiving the domain. The
	// CRLF terminator is appended by the client.
	Query string
}

// DefaultServers maps top-level domains to their registry servers.
func DefaultServers() map[string]Server {
	verisign := Server{Addr: "whois.verisign-grs.com", Query: "domain %s"}
	return map[string]Server{
		"com": verisign,
		"net": verisign,
	}
}

// queryFunc sends query to server and returns the reply. An empty server
// sends a bare top-level domain to the IANA root zone database.
type queryFunc func(query string, servers ...string) (string, error)

// Client is a WHOIS client over github.com/likexian/whois. Registries are
// queried directly; referrals to registrar servers are not followed.
type Client struct {
	mu       sync.RWMutex
	servers  map[string]Server
	timeout  time.Duration
	discover bool
	query    queryFunc
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithServer sets the server used for tld, replacing any default.
func WithServer(tld string, server Server) ClientOption {
	return func(c *Client) { c.servers[strings.ToLower(tld)] = server }
}

// WithTimeout bounds the whole exchange, dial included. A value of 0 or less
// leaves only the context deadline.
// Default: 10s
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithDiscovery controls whether the server of a top-level domain without a
// configured one is looked up in the IANA root zone database.
// Default: true
func WithDiscovery(enabled bool) ClientOption {
	return func(c *Client) { c.discover = enabled }
}

// NewClient creates a Client preloaded with DefaultServers.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		servers:  DefaultServers(),
		timeout:  10 * time.Second,
		discover: true,
	}
	for _, opt := range opts {
		opt(c)
	}

	wc := lwhois.NewClient().
		SetDisableStats(true).
		SetDisableReferral(true)
	if c.timeout > 0 {
		wc.SetDialer(&net.Dialer{Timeout: c.timeout}).SetTimeout(c.timeout)
	}
	c.query = wc.Whois
	return c
}

// Resolve returns the server queried for tld. Unconfigured top-level domains
// are looked up once in the IANA root zone database when discovery is enabled
// and the answer is kept for later lookups.
func (c *Client) Resolve(ctx context.Context, tld string) (Server, error) {
	tld = strings.TrimPrefix(strings.ToLower(tld), ".")
	if tld == "" {
		return Server{}, fmt.Errorf("%w: empty", ErrUnknownTLD)
	}

	c.mu.RLock()
	server, ok := c.servers[tld]
	c.mu.RUnlock()
	if ok {
		return server, nil
	}
	if !c.discover {
		return Server{}, fmt.Errorf("%w: %q", ErrUnknownTLD, tld)
	}

	record, err := c.exchange(ctx, tld, "")
	if err != nil {
		return Server{}, fmt.Errorf("whois: resolve %q: %w", tld, err)
	}
	addr := referredServer(record)
	if addr == "" {
		return Server{}, fmt.Errorf("%w: %q has no registry server", ErrUnknownTLD, tld)
	}

	server = Server{Addr: addr}
	c.mu.Lock()
	c.servers[tld] = server
	c.mu.Unlock()
	return server, nil
}

// Lookup implements the Lookup interface. Cancelling ctx returns immediately;
// the abandoned exchange ends at the client timeout.
func (c *Client) Lookup(ctx context.Context, domain string) (string, error) {
	domain = strings.ToLower(strings.TrimSuffix(domain, "."))
	dot := strings.LastIndexByte(domain, '.')
	if dot < 0 || dot == len(domain)-1 {
		return "", fmt.Errorf("%w: %q", ErrUnknownTLD, domain)
	}
	server, err := c.Resolve(ctx, domain[dot+1:])
	if err != nil {
		return "", err
	}

	query := domain
	if server.Query != "" {
		query = fmt.Sprintf(server.Query, domain)
	}
	raw, err := c.exchange(ctx, query, serverAddr(server.Addr))
	if err != nil {
		return "", fmt.Errorf("whois %s via %s: %w", domain, server.Addr, err)
	}
	return raw, nil
}

// exchange runs one query under ctx and the client timeout.
func (c *Client) exchange(ctx context.Context, query, addr string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	type reply struct {
		raw string
		err error
	}
	done := make(chan reply, 1)
	go func() {
		raw, err := c.query(query, addr)
		done <- reply{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		// Some registries answer a refusal, such as a rate limit, and drop
		// the connection before the query is fully read.
		if r.err != nil && strings.TrimSpace(r.raw) != "" {
			return r.raw, nil
		}
		return r.raw, r.err
	}
}

// referredServer extracts the "whois:" field of an IANA TLD record.
func referredServer(record string) string {
	for _, line := range strings.Split(record, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if ok && strings.EqualFold(key, "whois") {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func serverAddr(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, DefaultPort)
}
