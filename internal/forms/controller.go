// Package forms orchestrates the create/edit drawer: it owns the form
// state machine, client-side validation, payload assembly and the
// post-submit signals back to the parent list.
package forms

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"caja/internal/backend"
	"caja/internal/core"
	"caja/internal/log"
	"caja/internal/report"
)

// Phase is the drawer lifecycle:
// Closed -> Open -> Submitting -> Closed on success, back to Open on error.
type Phase string

const (
	PhaseClosed     Phase = "closed"
	PhaseOpen       Phase = "open"
	PhaseSubmitting Phase = "submitting"
)

var ErrNotOpen = errors.New("form is not open")

type (
	// Form is the drawer's editable state. Name is captured as explicit
	// first/last fields; records arriving with everything in nombre are
	// normalized on open.
	Form struct {
		ID           string
		Kind         core.Kind    `validate:"required"`
		Date         time.Time    `validate:"required"`
		Amount       string       `validate:"required"`
		Account      core.Account `validate:"required"`
		Concept      string
		FirstName    string
		LastName     string
		Document     string
		Reference    string
		Seller       string
		HasCustomer  bool
		Items        []report.LineItem
		WantsReceipt bool
	}

	// Notification is a transient toast shown for server failures.
	// Validation errors never become notifications; they stay on the
	// fields.
	Notification struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}

	// ReceiptPublisher requests an asynchronous receipt render for a
	// saved sale.
	ReceiptPublisher interface {
		PublishReceiptRequest(ctx context.Context, transactionID, tenant string) error
	}

	Controller struct {
		client   *backend.Client
		receipts ReceiptPublisher
		validate *validator.Validate
		log      *log.Logger

		phase       Phase
		form        Form
		fieldErrors map[string]string
		notice      *Notification
		onSaved     func(core.Transaction)
	}
)

// NewController builds a closed drawer. onSaved is invoked after a
// successful submit so the parent can close the drawer and re-fetch its
// list; receipts may be nil when receipt generation is unavailable.
func NewController(client *backend.Client, receipts ReceiptPublisher, logger *log.Logger, onSaved func(core.Transaction)) *Controller {
	return &Controller{
		client:   client,
		receipts: receipts,
		validate: validator.New(),
		log:      logger.WithComponent(log.ComponentForms),
		phase:    PhaseClosed,
		onSaved:  onSaved,
	}
}

func (c *Controller) Phase() Phase                   { return c.phase }
func (c *Controller) Form() Form                     { return c.form }
func (c *Controller) FieldErrors() map[string]string { return c.fieldErrors }
func (c *Controller) Notice() *Notification          { return c.notice }

// OpenBlank opens the drawer for creation: everything reset, defaults
// seeded from the current user and the current date.
func (c *Controller) OpenBlank(kind core.Kind, seller string, defaultAccount core.Account) {
	c.form = Form{
		Kind:    kind,
		Date:    time.Now(),
		Account: defaultAccount,
		Seller:  seller,
	}
	c.fieldErrors = nil
	c.notice = nil
	c.phase = PhaseOpen
}

// OpenEdit opens the drawer prefilled from an existing record. Derived
// UI state is re-inferred from the record shape: the customer toggle is
// on when a real (non-placeholder) name is present.
func (c *Controller) OpenEdit(t core.Transaction) {
	first, last := t.FirstName, t.LastName
	if last == "" {
		// Legacy records stored the whole name in nombre.
		first, last = SplitFullName(t.FirstName)
	}
	c.form = Form{
		ID:          t.ID,
		Kind:        t.Kind,
		Amount:      t.Amount.String(),
		Account:     t.Account,
		Concept:     t.Concept,
		FirstName:   first,
		LastName:    last,
		Document:    t.Document,
		Reference:   t.Reference,
		Seller:      t.Seller,
		HasCustomer: t.HasCustomer(),
		Items:       report.ParseItems(t.ItemsJSON),
	}
	if ts, ok := t.Timestamp(); ok {
		c.form.Date = ts
	} else {
		c.form.Date = time.Now()
	}
	c.fieldErrors = nil
	c.notice = nil
	c.phase = PhaseOpen
}

// SetForm replaces the editable state while the drawer is open.
func (c *Controller) SetForm(f Form) {
	if c.phase == PhaseOpen {
		c.form = f
	}
}

// Close discards the drawer state.
func (c *Controller) Close() {
	c.form = Form{}
	c.fieldErrors = nil
	c.notice = nil
	c.phase = PhaseClosed
}

// Submit validates and sends the form. Validation failures keep the
// drawer open with per-field errors and never reach the network. Server
// failures keep the drawer open with a notification carrying the server's
// message so the user can retry without re-entering data.
func (c *Controller) Submit(ctx context.Context, s backend.Session) (core.Transaction, error) {
	if c.phase != PhaseOpen {
		return core.Transaction{}, ErrNotOpen
	}

	c.fieldErrors = c.validateForm()
	if len(c.fieldErrors) > 0 {
		c.log.DebugContext(ctx, "Form rejected client-side",
			log.FieldOperation, log.OpValidate,
			log.FieldKind, string(c.form.Kind))
		return core.Transaction{}, nil
	}

	payload, err := BuildPayload(c.form)
	if err != nil {
		c.fieldErrors = map[string]string{"amount": "Importe no válido"}
		return core.Transaction{}, nil
	}

	c.phase = PhaseSubmitting
	c.notice = nil

	var saved core.Transaction
	if c.form.ID == "" {
		saved, err = c.client.Create(ctx, s, payload)
	} else {
		saved, err = c.client.Update(ctx, s, payload)
	}
	if err != nil {
		c.phase = PhaseOpen
		c.notice = &Notification{Type: "error", Message: noticeMessage(err)}
		c.log.WarnContext(ctx, "Submit failed",
			log.FieldError, err.Error(),
			log.FieldKind, string(c.form.Kind))
		return core.Transaction{}, err
	}

	receiptWanted := c.form.WantsReceipt && payload.Kind == core.KindIngreso
	c.Close()
	if c.onSaved != nil {
		c.onSaved(saved)
	}
	if receiptWanted && c.receipts != nil {
		if err := c.receipts.PublishReceiptRequest(ctx, saved.ID, s.Tenant); err != nil {
			// The sale is saved; a lost receipt request must not fail it.
			c.log.ErrorContext(ctx, "Receipt request failed",
				log.FieldError, err.Error(),
				log.FieldTransactionID, saved.ID)
		}
	}
	return saved, nil
}

// validateForm combines the tag rules with the kind-dependent ones.
// Errors are keyed by field for inline display.
func (c *Controller) validateForm() map[string]string {
	errs := make(map[string]string)

	if err := c.validate.Struct(c.form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs[fieldKey(fe.Field())] = fieldMessage(fe.Field())
			}
		}
	}
	if c.form.Account != "" && !c.form.Account.Valid() {
		errs["account"] = "Cuenta no válida"
	}
	if c.form.Kind == core.KindIngreso && c.form.HasCustomer && c.form.FirstName == "" {
		errs["firstName"] = "El nombre es obligatorio"
	}
	if c.form.Kind == core.KindEgreso && c.form.Concept == "" {
		errs["concept"] = "El concepto es obligatorio"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func fieldKey(name string) string {
	switch name {
	case "Kind":
		return "kind"
	case "Date":
		return "date"
	case "Amount":
		return "amount"
	case "Account":
		return "account"
	default:
		return name
	}
}

func fieldMessage(name string) string {
	switch name {
	case "Amount":
		return "El importe es obligatorio"
	case "Account":
		return "La cuenta es obligatoria"
	default:
		return "Campo obligatorio"
	}
}

func noticeMessage(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return backend.GenericErrorMessage
}
