// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/trustindex"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/verify"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/logger"
)

const (
	// DefaultPort is used when the target names no port.
	DefaultPort = 443
	// DefaultTimeout bounds the connect and handshake phases together.
	DefaultTimeout = 10 * time.Second
)

// ErrInvalidTarget is returned by [ParseTarget] for unusable input.
var ErrInvalidTarget = errors.New("x509chain: invalid target")

// Target is the endpoint to inspect.
type Target struct {
	Host       string
	Port       int
	ServerName string
}

// Address returns the dialable host:port form of t.
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// ParseTarget accepts a host, a host:port pair or a URL and returns the
// endpoint it names. The scheme and any path are dropped, the port
// defaults to 443 and serverName defaults to the host.
func ParseTarget(input, serverName string) (Target, error) {
	s := strings.TrimSpace(input)
	if rest, ok := strings.CutPrefix(s, "https://"); ok {
		s = rest
	} else if rest, ok := strings.CutPrefix(s, "http://"); ok {
		s = rest
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}

	host, port := s, DefaultPort
	switch {
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		host = s[1 : len(s)-1]
	case strings.HasPrefix(s, "[") || strings.Count(s, ":") == 1:
		h, p, err := net.SplitHostPort(s)
		if err != nil {
			return Target{}, fmt.Errorf("%w: %q: %w", ErrInvalidTarget, input, err)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return Target{}, fmt.Errorf("%w: %q: bad port %q", ErrInvalidTarget, input, p)
		}
		host, port = h, n
	}
	// More than one colon without brackets is a bare IPv6 address.

	if host == "" {
		return Target{}, fmt.Errorf("%w: %q: empty host", ErrInvalidTarget, input)
	}
	if serverName == "" {
		serverName = host
	}
	return Target{Host: host, Port: port, ServerName: serverName}, nil
}

// Session is the outcome of a completed handshake.
type Session struct {
	State tls.ConnectionState
	Chain []*x509.Certificate
}

// Handshake connects to target and completes a TLS handshake without
// enforcing trust. onVerify, when set, observes the connection state
// before the handshake finishes and cannot fail it. The connection is
// closed before Handshake returns.
func Handshake(ctx context.Context, target Target, timeout time.Duration, onVerify func(tls.ConnectionState)) (*Session, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		Config: &tls.Config{
			// Trust is judged by the checker, not the handshake.
			InsecureSkipVerify: true,
			ServerName:         target.ServerName,
			VerifyConnection: func(cs tls.ConnectionState) error {
				if onVerify != nil {
					onVerify(cs)
				}
				return nil
			},
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", target.Address())
	if err != nil {
		return nil, classifyDialError(target, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, ErrNoPeerCertificates
	}
	return &Session{State: state, Chain: state.PeerCertificates}, nil
}

func classifyDialError(target Target, err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %s: %w", ErrResolveHost, target.Host, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return fmt.Errorf("%w: %s: %w", ErrConnect, target.Address(), err)
	}
	return fmt.Errorf("%w: %s: %w", ErrHandshake, target.Address(), err)
}

// Inspector runs handshakes against targets and resolves their chains
// against a trust index.
//
// An Inspector is safe for concurrent use. Each inspection owns its own
// collector.
type Inspector struct {
	Index    trustindex.ReadableIndex
	Timeout  time.Duration
	MaxDepth int
	Logger   logger.Logger

	mu    sync.Mutex
	roots *verify.RootSet
}

// NewInspector creates an inspector over index. A nil log is silent.
func NewInspector(index trustindex.ReadableIndex, log logger.Logger) *Inspector {
	if log == nil {
		log = logger.NewMCPLogger(nil, true)
	}
	return &Inspector{
		Index:    index,
		Timeout:  DefaultTimeout,
		MaxDepth: verify.DefaultMaxDepth,
		Logger:   log,
	}
}

// Location returns where the trust index lives, if it is directory backed.
func (in *Inspector) Location() string {
	if d, ok := in.Index.(interface{ Dir() string }); ok {
		return d.Dir()
	}
	return ""
}

// Roots returns the trust anchors loaded from the index. They are read
// once and reused until [Inspector.Reload].
func (in *Inspector) Roots() (*verify.RootSet, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.roots != nil {
		return in.roots, nil
	}
	if d, ok := in.Index.(interface{ Exists() bool }); ok && !d.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrIndexMissing, in.Location())
	}

	certs, err := trustindex.LoadCertificates(in.Index)
	if err != nil && len(certs) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrIndexLookup, err)
	}
	if err != nil {
		in.Logger.Printf("Trust index has unreadable entries: %v", err)
	}
	in.roots = verify.NewRootSet(certs...)
	return in.roots, nil
}

// Reload drops the cached trust anchors.
func (in *Inspector) Reload() {
	in.mu.Lock()
	in.roots = nil
	in.mu.Unlock()
}

// Inspect connects to target and reports the trust state of its chain.
//
// Verification findings never fail the inspection. Only connection
// failures and trust index errors are returned.
func (in *Inspector) Inspect(ctx context.Context, target Target) (*Report, error) {
	roots, err := in.Roots()
	if err != nil {
		return nil, err
	}

	in.Logger.Printf("Inspecting %s (servername %s)", target.Address(), target.ServerName)

	checker := &verify.Checker{Roots: roots, MaxDepth: in.MaxDepth}
	collector := verify.NewCollector()
	session, err := Handshake(ctx, target, in.Timeout, func(cs tls.ConnectionState) {
		checker.Walk(cs.PeerCertificates, collector)
	})
	if err != nil {
		return nil, err
	}

	report, err := NewResolver(in.Index).Resolve(session.Chain, collector.Verdicts())
	if err != nil {
		return nil, err
	}
	report.TrustIndex = in.Location()
	report.Connection = ConnectionInfo{
		Host:           target.Host,
		Port:           target.Port,
		ServerName:     target.ServerName,
		Cipher:         tls.CipherSuiteName(session.State.CipherSuite),
		Protocol:       protocolName(session.State.Version),
		Bits:           cipherBits(session.State.CipherSuite),
		LibraryVerdict: libraryVerdict(session.Chain, roots, target.ServerName),
	}

	in.Logger.Printf("Resolved %d certificates for %s (trusted: %t)", len(report.Entries), target.Address(), report.Trusted())
	return report, nil
}

// libraryVerdict runs the standard library verifier over the presented
// chain with the index as its only roots.
func libraryVerdict(chain []*x509.Certificate, roots *verify.RootSet, serverName string) string {
	intermediates := x509.NewCertPool()
	for _, cert := range chain[1:] {
		intermediates.AddCert(cert)
	}
	opts := x509.VerifyOptions{
		DNSName:       serverName,
		Roots:         roots.Pool(),
		Intermediates: intermediates,
	}
	if _, err := chain[0].Verify(opts); err != nil {
		return err.Error()
	}
	return "ok"
}

func protocolName(version uint16) string {
	switch version {
	case tls.VersionTLS13:
		return "TLSv1.3"
	case tls.VersionTLS12:
		return "TLSv1.2"
	case tls.VersionTLS11:
		return "TLSv1.1"
	case tls.VersionTLS10:
		return "TLSv1"
	}
	return tls.VersionName(version)
}

// cipherBits returns the symmetric key strength of a cipher suite.
func cipherBits(id uint16) int {
	name := tls.CipherSuiteName(id)
	switch {
	case strings.Contains(name, "AES_256"), strings.Contains(name, "CHACHA20"):
		return 256
	case strings.Contains(name, "AES_128"), strings.Contains(name, "RC4_128"):
		return 128
	case strings.Contains(name, "3DES"):
		return 112
	}
	return 0
}
