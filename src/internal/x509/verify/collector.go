// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verify

import (
	"crypto/x509"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Listener receives one call per certificate per depth while a chain is
// verified. The return value tells the caller whether to continue.
type Listener interface {
	OnCertificateVerified(cert *x509.Certificate, code ErrorCode, depth int) bool
}

// ListenerFunc adapts a function to the [Listener] interface.
type ListenerFunc func(cert *x509.Certificate, code ErrorCode, depth int) bool

// OnCertificateVerified calls f.
func (f ListenerFunc) OnCertificateVerified(cert *x509.Certificate, code ErrorCode, depth int) bool {
	return f(cert, code, depth)
}

// Finding is a single verification result recorded for a depth.
type Finding struct {
	Code        ErrorCode `json:"code"`
	Description string    `json:"description"`
}

// Verdict is the ordered list of findings for one chain depth.
type Verdict struct {
	Depth    int       `json:"depth"`
	Findings []Finding `json:"findings"`
}

// OK reports whether the verdict holds nothing but a success.
func (v Verdict) OK() bool {
	for _, f := range v.Findings {
		if f.Code != CodeOK {
			return false
		}
	}
	return len(v.Findings) > 0
}

// String renders the verdict as
//
//	verify:depth:<d> - <code>: <desc>[ - <code>: <desc>...]
func (v Verdict) String() string {
	var sb strings.Builder
	sb.WriteString("verify:depth:")
	sb.WriteString(strconv.Itoa(v.Depth))
	for _, f := range v.Findings {
		sb.WriteString(" - ")
		sb.WriteString(strconv.Itoa(int(f.Code)))
		sb.WriteString(": ")
		sb.WriteString(f.Description)
	}
	return sb.String()
}

// Verdicts maps chain depth to its verdict.
type Verdicts map[int]Verdict

// Render returns the textual form of the verdict at depth, or an empty
// string when no event was seen for it.
func (vs Verdicts) Render(depth int) string {
	v, ok := vs[depth]
	if !ok {
		return ""
	}
	return v.String()
}

// Depths returns the recorded depths in ascending order.
func (vs Verdicts) Depths() []int {
	depths := make([]int, 0, len(vs))
	for d := range vs {
		depths = append(depths, d)
	}
	sort.Ints(depths)
	return depths
}

// Collector accumulates verification events into per-depth verdicts.
//
// The first event seen for a depth seeds its verdict, whatever its code.
// Later events only add to it when they carry an error, because verifiers
// may report a certificate more than once.
//
// A Collector belongs to a single inspection. It is safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	verdicts map[int]*Verdict
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{verdicts: make(map[int]*Verdict)}
}

// OnCertificateVerified records the event and always returns true so the
// handshake carries on regardless of the result.
func (c *Collector) OnCertificateVerified(_ *x509.Certificate, code ErrorCode, depth int) bool {
	finding := Finding{Code: code, Description: code.String()}

	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.verdicts[depth]
	switch {
	case !ok:
		c.verdicts[depth] = &Verdict{Depth: depth, Findings: []Finding{finding}}
	case code != CodeOK:
		v.Findings = append(v.Findings, finding)
	}
	return true
}

// Verdicts returns a snapshot of everything collected so far.
func (c *Collector) Verdicts() Verdicts {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(Verdicts, len(c.verdicts))
	for d, v := range c.verdicts {
		findings := make([]Finding, len(v.Findings))
		copy(findings, v.Findings)
		out[d] = Verdict{Depth: d, Findings: findings}
	}
	return out
}
