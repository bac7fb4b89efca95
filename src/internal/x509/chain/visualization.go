// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/attributes"
)

// textFields lists the extensions shown in the text report, in order.
var textFields = []string{
	attributes.NameSubjectAltName,
	attributes.NameKeyUsage,
	attributes.NameExtendedKeyUsage,
	attributes.NameBasicConstraints,
}

// RenderText renders the report as an indented listing, one block per
// depth. The PEM of every certificate is included when withPEM is set.
func (r *Report) RenderText(withPEM bool) string {
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	c := r.Connection
	addr := c.Host + ":" + strconv.Itoa(c.Port)
	if c.ServerName != "" && c.ServerName != c.Host {
		fmt.Fprintf(buf, "cert-inspection: %s on %s\n\n", c.ServerName, addr)
	} else {
		fmt.Fprintf(buf, "cert-inspection: %s\n\n", addr)
	}
	fmt.Fprintf(buf, "connection: %s %d bits using %s\n", c.Protocol, c.Bits, c.Cipher)
	fmt.Fprintf(buf, "CA Trust Index: %s\n", r.TrustIndex)
	if c.LibraryVerdict != "" {
		fmt.Fprintf(buf, "library verification: %s\n", c.LibraryVerdict)
	}

	for _, e := range r.Entries {
		var notes []string
		if e.FromServer {
			notes = append(notes, "sent by server")
		}
		if e.Trusted {
			notes = append(notes, "in local CA trust store")
		}

		fmt.Fprintf(buf, "\n%d", e.Depth)
		if len(notes) > 0 {
			fmt.Fprintf(buf, " (%s)", strings.Join(notes, ", "))
		}
		if e.Validation != "" {
			fmt.Fprintf(buf, " %s", e.Validation)
		}
		buf.WriteByte('\n')

		field(buf, "subject", e.Subject)
		field(buf, "issuer", e.Issuer)
		field(buf, "notBefore", attributes.FormatTime(e.NotBefore))
		field(buf, "notAfter", attributes.FormatTime(e.NotAfter))
		for _, name := range textFields {
			field(buf, name, e.Extensions[name])
		}
		field(buf, "serialnumber", e.SerialNumber)
		field(buf, "signature_algorithm", e.SignatureAlgorithm)
		field(buf, "fingerprint", e.SHA1Fingerprint)
		field(buf, attributes.NameSubjectKeyIdentifier, e.Extensions[attributes.NameSubjectKeyIdentifier])
		if e.IssuerID != "" {
			field(buf, attributes.NameAuthorityKeyIdentifier, e.IssuerID)
		}
		if withPEM {
			fmt.Fprintf(buf, "\n%s", e.PEM)
		}
	}

	return buf.String()
}

// field writes one indented label line, skipping empty values. Multi-line
// values are folded onto the label line.
func field(buf gc.Buffer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(buf, "  %s: %s\n", label, strings.ReplaceAll(value, "\n", ", "))
}

// RenderASCIITree renders the report as a tree from leaf to root.
//
// Each line carries a status mark: ✓ verified, ✗ verification findings,
// ? not verified during the handshake.
func (r *Report) RenderASCIITree() string {
	if len(r.Entries) == 0 {
		return "No certificates in chain"
	}

	var sb strings.Builder
	sb.WriteString(r.Connection.Host + ":" + strconv.Itoa(r.Connection.Port) + "\n")
	for i, e := range r.Entries {
		connector := "├── "
		if i == len(r.Entries)-1 {
			connector = "└── "
		}
		mark := "?"
		switch {
		case e.Verified():
			mark = "✓"
		case len(e.Findings) > 0:
			mark = "✗"
		}

		fmt.Fprintf(&sb, "%s[%s] %s (%s)", connector, mark, commonName(e), r.role(i))
		if e.Trusted {
			sb.WriteString(" [trusted]")
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// RenderTable renders the report as a markdown table.
func (r *Report) RenderTable() string {
	if len(r.Entries) == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"Depth", "Role", "Subject", "Issuer", "Valid Until", "Source", "Trusted", "Validation"})

	rows := make([][]string, 0, len(r.Entries))
	for i, e := range r.Entries {
		source := "server"
		if !e.FromServer {
			source = "trust index"
		}
		validation := "-"
		if len(e.Findings) > 0 {
			validation = findingsSummary(e)
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Depth),
			r.role(i),
			e.Subject,
			e.Issuer,
			e.NotAfter.Format("2006-01-02"),
			source,
			strconv.FormatBool(e.Trusted),
			validation,
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// ToJSON returns the report as indented JSON.
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "    ")
}

func findingsSummary(e Entry) string {
	codes := make([]string, len(e.Findings))
	for i, f := range e.Findings {
		codes[i] = strconv.Itoa(int(f.Code))
	}
	return strings.Join(codes, ", ")
}

func commonName(e Entry) string {
	if cert := e.Certificate(); cert != nil && cert.Subject.CommonName != "" {
		return cert.Subject.CommonName
	}
	return e.Subject
}

// role describes the position of entry i in the chain.
func (r *Report) role(i int) string {
	e := r.Entries[i]
	switch {
	case !e.FromServer:
		return "Root CA (trust index)"
	case len(r.Entries) == 1:
		return "Single Certificate"
	case i == 0:
		return "Leaf"
	case e.Subject == e.Issuer:
		return "Root CA"
	default:
		return "Intermediate CA"
	}
}
