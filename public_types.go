package client

import (
	"github.com/stockroom/stockroom-client/internal/envelope"
	"github.com/stockroom/stockroom-client/internal/forms"
	"github.com/stockroom/stockroom-client/internal/loader"
	"github.com/stockroom/stockroom-client/internal/optionsrc"
	"github.com/stockroom/stockroom-client/internal/selection"
	"github.com/stockroom/stockroom-client/internal/session"
	"github.com/stockroom/stockroom-client/internal/types"
)

// Public type aliases so SDK consumers can import only the client package.
type (
	// Requests
	LoginRequest    = types.LoginRequest
	ListParams      = types.ListParams
	ProductInput    = types.ProductInput
	CustomerInput   = types.CustomerInput
	SupplierInput   = types.SupplierInput
	SalesOrderInput = types.SalesOrderInput
	StockAdjustment = types.StockAdjustment

	// Domain entities
	User          = types.User
	Product       = types.Product
	Customer      = types.Customer
	Supplier      = types.Supplier
	OrderStatus   = types.OrderStatus
	OrderLine     = types.OrderLine
	SalesOrder    = types.SalesOrder
	InventoryItem = types.InventoryItem
	Upload        = types.Upload

	// Envelope
	Error = envelope.Error

	// Session
	Session      = session.Session
	SessionEvent = session.Event
	SessionStore = session.Store

	// Async state and forms
	LoadState = loader.State
	Loader    = loader.Loader
	RawOption = optionsrc.RawOption
	Form      = forms.Form
	Field     = forms.Field
	Values    = forms.Values

	// Form field kinds. Field is sealed: only these satisfy it.
	FieldBase       = forms.Base
	TextField       = forms.TextField
	TextAreaField   = forms.TextAreaField
	NumberField     = forms.NumberField
	DateField       = forms.DateField
	SwitchField     = forms.SwitchField
	SelectField     = forms.SelectField
	OptionSet       = forms.OptionSet
	FieldVisitor    = forms.Visitor
	ValidationError = forms.ValidationError
	FormProblem     = forms.Problem
)

type (
	Result[T any]                = envelope.Result[T]
	Page[T any]                  = types.Page[T]
	SelectOption[T any]          = optionsrc.Option[T]
	OptionSource[T any]          = optionsrc.Source[T]
	Resource[T any]              = loader.Resource[T]
	Selection[T comparable]      = selection.Machine[T]
	SelectionValue[T comparable] = selection.Value[T]
)

// Order statuses.
const (
	OrderDraft     = types.OrderDraft
	OrderConfirmed = types.OrderConfirmed
	OrderShipped   = types.OrderShipped
	OrderDelivered = types.OrderDelivered
	OrderCancelled = types.OrderCancelled
)

// NewLoader wraps op in a Loader that tracks its loading state.
func NewLoader(op loader.Op) *Loader { return loader.New(op) }

// NewResource wraps fetch in a Resource that also keeps the last result.
func NewResource[T any](fetch loader.Fetch[T]) *Resource[T] { return loader.NewResource(fetch) }

// VisitField dispatches f to the FieldVisitor method for its kind.
func VisitField(f Field, v FieldVisitor) { forms.Visit(f, v) }

// StaticOptions returns an option source over a fixed list.
func StaticOptions[T any](opts []SelectOption[T]) *OptionSource[T] { return optionsrc.Static(opts) }

// SingleSelect returns a single-value selection over opts.
func SingleSelect[T comparable](opts []SelectOption[T], initial *T) *Selection[T] {
	return selection.Single(opts, initial)
}

// MultiSelect returns a multi-value selection over opts.
func MultiSelect[T comparable](opts []SelectOption[T], initial []T) *Selection[T] {
	return selection.Multi(opts, initial)
}
