// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	x509alg "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/algorithm"
	x509certs "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/certs"
	x509keys "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/keys"
)

// ReportEntry describes one certificate of an inspected chain.
type ReportEntry struct {
	Index              int       `json:"index"`
	Role               string    `json:"role"`
	Name               string    `json:"name"`
	Fingerprint        string    `json:"fingerprint"`
	PublicKeyAlgorithm string    `json:"publicKeyAlgorithm"`
	SignatureAlgorithm string    `json:"signatureAlgorithm"`
	NotBefore          time.Time `json:"notBefore"`
	NotAfter           time.Time `json:"notAfter"`
	TimeValid          bool      `json:"timeValid"`
	Trusted            bool      `json:"trusted"`
	SignedByNext       *bool     `json:"signedByNext,omitempty"`
}

// Report is a per-certificate summary of a chain together with the verdict
// VerifyCertificates gives for it.
type Report struct {
	CheckedAt time.Time     `json:"checkedAt"`
	Entries   []ReportEntry `json:"certificates"`
	Verdict   error         `json:"-"`
}

// Inspect decodes raw and summarizes every certificate.
//
// Unlike VerifyChain it does not stop at the first failing certificate:
// every entry records its own validity, trust and signature status. The
// verdict is the result of VerifyCertificates on the same chain.
//
// Returns:
//   - *Report: Chain summary
//   - error: ErrEmptyChain or ErrParse; other failures only appear in
//     Report.Verdict
func (v *Validator) Inspect(raw [][]byte) (*Report, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: nothing to inspect", ErrEmptyChain)
	}
	chain, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	now := v.clock()
	report := &Report{
		CheckedAt: now,
		Entries:   make([]ReportEntry, len(chain)),
	}
	for i, cert := range chain {
		entry := ReportEntry{
			Index:              i,
			Role:               certificateRole(chain, i),
			Name:               cert.CAName(),
			Fingerprint:        cert.Fingerprint(),
			PublicKeyAlgorithm: describeKey(cert),
			SignatureAlgorithm: describeSignature(cert),
			NotBefore:          cert.NotBeforeTime(),
			NotAfter:           cert.NotAfterTime(),
			TimeValid:          validAt(cert, now),
			Trusted:            v.store.IsTrusted(cert),
		}
		if i+1 < len(chain) {
			ok := verifyIssued(cert, chain[i+1]) == nil
			entry.SignedByNext = &ok
		}
		report.Entries[i] = entry
	}

	report.Verdict = v.VerifyCertificates(chain)
	return report, nil
}

func describeKey(cert *x509certs.Certificate) string {
	key, err := x509keys.PublicKeyOf(cert)
	if err != nil {
		return cert.PublicKeyInfo.AlgorithmOID
	}
	if key.Curve != "" {
		return fmt.Sprintf("%s (%s)", key.Kind, key.Curve)
	}
	return key.Kind.String()
}

func describeSignature(cert *x509certs.Certificate) string {
	alg, err := x509alg.LookupBySigOID(cert.SignatureAlgorithmOID)
	if err != nil {
		return cert.SignatureAlgorithmOID
	}
	return alg.String()
}

// RenderTable renders the report as a markdown table.
//
// Returns:
//   - string: Markdown table with one row per certificate
func (r *Report) RenderTable() string {
	if len(r.Entries) == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"#", "Role", "Name", "Key", "Signature", "Valid Until", "Time", "Trusted", "Fingerprint"})

	rows := make([][]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.Index),
			e.Role,
			e.Name,
			e.PublicKeyAlgorithm,
			e.SignatureAlgorithm,
			e.NotAfter.UTC().Format("2006-01-02"),
			mark(e.TimeValid),
			mark(e.Trusted),
			e.Fingerprint[:16] + "…",
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// RenderASCIITree renders the chain leaf first as an ASCII tree, marking
// each certificate whose validity window and issuer signature both check out.
func (r *Report) RenderASCIITree() string {
	if len(r.Entries) == 0 {
		return "No certificates in chain"
	}

	var out strings.Builder
	for i, e := range r.Entries {
		connector := "├── "
		if i == len(r.Entries)-1 {
			connector = "└── "
		}

		ok := e.TimeValid && (e.SignedByNext == nil || *e.SignedByNext)
		line := fmt.Sprintf("[%s] %s (%s)", mark(ok), e.Name, e.Role)
		if e.Trusted {
			line += " trusted"
		}
		out.WriteString(connector + line + "\n")
	}
	return out.String()
}

// ToJSON encodes the report with the verdict as a string ("" when valid).
func (r *Report) ToJSON() ([]byte, error) {
	type alias Report
	verdict := ""
	if r.Verdict != nil {
		verdict = r.Verdict.Error()
	}
	return json.MarshalIndent(struct {
		*alias
		Valid   bool   `json:"valid"`
		Verdict string `json:"verdict"`
	}{alias: (*alias)(r), Valid: r.Verdict == nil, Verdict: verdict}, "", "  ")
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

// certificateRole names chain[index]. A chain that stops at an intermediate
// is common, so the last entry is only a root when it is self-signed.
func certificateRole(chain []*x509certs.Certificate, index int) string {
	switch {
	case len(chain) == 1:
		return "Single Certificate"
	case index == 0:
		return "End-Entity Certificate"
	case index == len(chain)-1 && IsSelfSigned(chain[index]):
		return "Root Certificate"
	default:
		return "Intermediate Certificate"
	}
}
