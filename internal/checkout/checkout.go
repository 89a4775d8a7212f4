package checkout

import (
	"sort"
	"strings"
)

const (
	MethodEMoney = "e-money"
	MethodCash   = "cash"
)

// Form is the raw checkout payload as submitted by the client.
type Form struct {
	Billing  BillingForm  `json:"billing"`
	Shipping ShippingForm `json:"shipping"`
	Payment  PaymentForm  `json:"payment"`
}

type BillingForm struct {
	Name        string `json:"name"        validate:"required,min=2,max=50,person_name"`
	Email       string `json:"email"       validate:"required,email_shape"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=10,max=20,phone"`
}

type ShippingForm struct {
	Address string `json:"address" validate:"required,min=5"`
	ZipCode string `json:"zipCode" validate:"required,min=3,max=10,zip_code"`
	City    string `json:"city"    validate:"required,min=2"`
	Country string `json:"country" validate:"required,min=2"`
}

type PaymentForm struct {
	Method       string `json:"method"       validate:"required,oneof=e-money cash"`
	EMoneyNumber string `json:"eMoneyNumber" validate:"-"`
	EMoneyPin    string `json:"eMoneyPin"    validate:"-"`
}

// eMoneyForm holds the fields that only exist when the method is e-money.
type eMoneyForm struct {
	EMoneyNumber string `json:"eMoneyNumber" validate:"required,emoney_number"`
	EMoneyPin    string `json:"eMoneyPin"    validate:"required,emoney_pin"`
}

type Billing struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

type Shipping struct {
	Address string `json:"address"`
	ZipCode string `json:"zipCode"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// PaymentMethod is either EMoney or Cash.
type PaymentMethod interface {
	Kind() string
	isPaymentMethod()
}

type EMoney struct {
	Number string
	Pin    string
}

func (EMoney) Kind() string      { return MethodEMoney }
func (EMoney) isPaymentMethod() {}

type Cash struct{}

func (Cash) Kind() string      { return MethodCash }
func (Cash) isPaymentMethod() {}

// Request is a validated, normalized checkout submission.
type Request struct {
	Billing  Billing
	Shipping Shipping
	Payment  PaymentMethod
}

// FieldErrors maps a field path such as "billing.email" to a message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "invalid checkout form: " + strings.Join(parts, "; ")
}
