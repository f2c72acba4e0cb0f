// Package verification checks documents against the ledger: by database id, by
// certificate id, or from an uploaded file carrying an embedded proof blob.
package verification

// Status values for a verification result.
const (
	StatusValid   = "valid"
	StatusInvalid = "invalid"
)

// Error codes carried on invalid results. Verification failures are results,
// not transport errors: a tampered document is a 200 with status invalid.
const (
	CodeInvalidDocID       = "INVALID_DOC_ID"
	CodeDocNotFound        = "DOC_NOT_FOUND"
	CodeCertIDNotFound     = "CERT_ID_NOT_FOUND"
	CodeHashMismatch       = "HASH_MISMATCH"
	CodeQRDataNotFound     = "QRDATA_NOT_FOUND"
	CodeQRDataMissingKeys  = "QRDATA_MISSING_KEYS"
	CodeFileParseError     = "FILE_PARSE_ERROR"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeVerificationFailed = "VERIFICATION_ERROR"
)

// ResultError describes why a verification came back invalid.
type ResultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DocumentView is the subset of a document exposed in verification responses.
type DocumentView struct {
	ID          int64  `json:"id"`
	DocType     string `json:"doc_type"`
	Name        string `json:"name"`
	Number      string `json:"number,omitempty"`
	ExamName    string `json:"exam_name,omitempty"`
	IssueDate   string `json:"issue_date"`
	Status      string `json:"status"`
	Institute   string `json:"institute,omitempty"`
	StudentRoll string `json:"student_roll,omitempty"`
	StudentName string `json:"student_name,omitempty"`
	CertID      string `json:"cert_id,omitempty"`
}

// Details carries supporting evidence for a result.
type Details struct {
	LedgerHash   string `json:"ledger_hash,omitempty"`
	DatabaseHash string `json:"database_hash,omitempty"`
	Healed       bool   `json:"healed,omitempty"`
	Method       string `json:"method"`
}

// Result is the outcome of one verification attempt.
type Result struct {
	Status   string        `json:"status"`
	Document *DocumentView `json:"document,omitempty"`
	Details  *Details      `json:"verification_details,omitempty"`
	Error    *ResultError  `json:"error,omitempty"`
}

// Valid reports whether the result confirms the document.
func (r *Result) Valid() bool { return r.Status == StatusValid }

func invalid(method, code, message string) *Result {
	return &Result{
		Status:  StatusInvalid,
		Details: &Details{Method: method},
		Error:   &ResultError{Code: code, Message: message},
	}
}
