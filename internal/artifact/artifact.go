// Package artifact embeds and extracts the machine-readable proof blob carried
// inside issued PDF files. The blob is a small JSON object appended to the file
// as a trailing comment line, which PDF viewers ignore but verification can
// read back without rendering the document.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	dErrors "veridoc/pkg/domain-errors"
)

// Marker introduces the proof blob comment line.
const Marker = "%%QRData:"

// legacyKey is the Info-dictionary string older issuers wrote instead of the
// trailing comment.
const legacyKey = "/QRData"

var (
	// ErrNotPDF is returned when the input does not carry a PDF header.
	ErrNotPDF = dErrors.New(dErrors.CodeBadRequest, "file is not a PDF")
	// ErrProofNotFound is returned when no proof blob is present.
	ErrProofNotFound = dErrors.New(dErrors.CodeNotFound, "no proof data found in file")
	// ErrProofMalformed is returned when a blob is present but unreadable.
	ErrProofMalformed = dErrors.New(dErrors.CodeSerialization, "proof data is malformed")
)

// Proof is the identity payload embedded in an issued document.
type Proof struct {
	DocID       int64  `json:"doc_id"`
	Hash        string `json:"hash"`
	Type        string `json:"type"`
	Institute   string `json:"institute"`
	CertID      string `json:"cert_id"`
	StudentRoll string `json:"student_roll"`
	StudentName string `json:"student_name"`
	UIN         string `json:"uin"`
	Number      string `json:"number,omitempty"`
}

// Embed appends the proof blob to a PDF. The input must start with the PDF
// magic bytes.
func Embed(pdf []byte, proof Proof) ([]byte, error) {
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}
	blob, err := json.Marshal(proof)
	if err != nil {
		return nil, fmt.Errorf("encode proof: %w", err)
	}
	out := make([]byte, 0, len(pdf)+len(Marker)+len(blob)+2)
	out = append(out, pdf...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, Marker...)
	out = append(out, ' ')
	out = append(out, blob...)
	out = append(out, '\n')
	return out, nil
}

// Extract reads the proof blob back out of a PDF, accepting both the trailing
// comment form and the legacy Info-dictionary string.
func Extract(pdf []byte) (*Proof, error) {
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}
	if blob, ok := findComment(pdf); ok {
		return decodeProof(blob)
	}
	if blob, ok := findLegacy(pdf); ok {
		return decodeProof(blob)
	}
	return nil, ErrProofNotFound
}

func decodeProof(blob []byte) (*Proof, error) {
	var proof Proof
	if err := json.Unmarshal(blob, &proof); err != nil {
		return nil, ErrProofMalformed
	}
	return &proof, nil
}

// findComment locates the last trailing comment blob. Later blobs win, so a
// re-stamped document carries its newest identity.
func findComment(pdf []byte) ([]byte, bool) {
	idx := bytes.LastIndex(pdf, []byte(Marker))
	if idx < 0 {
		return nil, false
	}
	rest := pdf[idx+len(Marker):]
	if end := bytes.IndexByte(rest, '\n'); end >= 0 {
		rest = rest[:end]
	}
	blob := bytes.TrimSpace(rest)
	if len(blob) == 0 {
		return nil, false
	}
	return blob, true
}

// findLegacy pulls the JSON out of an Info-dictionary entry of the form
// /QRData (....) with PDF string escaping.
func findLegacy(pdf []byte) ([]byte, bool) {
	idx := bytes.Index(pdf, []byte(legacyKey))
	if idx < 0 {
		return nil, false
	}
	rest := pdf[idx+len(legacyKey):]
	open := bytes.IndexByte(rest, '(')
	if open < 0 {
		return nil, false
	}
	rest = rest[open+1:]

	var sb strings.Builder
	depth := 1
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		switch c {
		case '\\':
			if i+1 < len(rest) {
				i++
				sb.WriteByte(rest[i])
			}
		case '(':
			depth++
			sb.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return []byte(sb.String()), true
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return nil, false
}
