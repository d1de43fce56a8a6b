package billing

import (
	"errors"
	"fmt"

	"github.com/fetch46/care-coord-suite/pkg/money"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrLastItem        = errors.New("an invoice must keep at least one line item")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNotReversible   = errors.New("only completed payments can be refunded")
	ErrNumberConflict  = errors.New("document number already allocated")
	ErrInvoiceClosed   = errors.New("invoice is paid or cancelled")
)

// Validation codes surfaced to API clients.
const (
	CodeMissingPatient   = "missing_patient"
	CodeEmptyDescription = "empty_description"
	CodeNoLineItems      = "no_line_items"
	CodeInvalidDueDate   = "invalid_due_date"
	CodeInvalidStatus    = "invalid_status"
)

// ValidationError reports a submit-time rule violation on a draft.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }

func missingPatientErr() *ValidationError {
	return &ValidationError{Code: CodeMissingPatient, Message: "a patient must be selected"}
}

func noLineItemsErr() *ValidationError {
	return &ValidationError{Code: CodeNoLineItems, Message: "an invoice needs at least one line item"}
}

func invalidDueDateErr() *ValidationError {
	return &ValidationError{Code: CodeInvalidDueDate, Message: "due date cannot precede the invoice date"}
}

func invalidSubmitStatusErr(status string) *ValidationError {
	return &ValidationError{
		Code:    CodeInvalidStatus,
		Message: fmt.Sprintf("a draft can only be submitted as draft or sent, not %q", status),
	}
}

func emptyDescriptionErr(line int) *ValidationError {
	return &ValidationError{
		Code:    CodeEmptyDescription,
		Message: fmt.Sprintf("line item %d is missing a description", line),
	}
}

// OverpaymentError rejects a payment that would push the completed total
// past the invoice amount. The excess is reported so the client can show
// exactly how far over the submission went.
type OverpaymentError struct {
	Excess money.Money
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment exceeds invoice balance by %s", e.Excess.Format("$"))
}
