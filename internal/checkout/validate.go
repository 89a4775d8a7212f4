package checkout

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MinQuantity = 1
	MaxQuantity = 10
)

const (
	msgRequired      = "This field is required"
	msgInvalidEmail  = "Please enter a valid email address"
	msgInvalidPhone  = "Please enter a valid phone number"
	msgInvalidZip    = "Please enter a valid ZIP code"
	msgInvalidNumber = "e-Money Number must be 9 digits"
	msgInvalidPin    = "e-Money PIN must be 4 digits"
	msgNamePattern   = "Name can only contain letters, spaces, hyphens, and apostrophes"
	msgNameTooShort  = "Name must be at least 2 characters"
	msgNameTooLong   = "Name cannot exceed 50 characters"
	msgPaymentMethod = "Please select a payment method"
)

var (
	namePattern   = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern  = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
	zipPattern    = regexp.MustCompile(`^[A-Za-z0-9\s-]+$`)
	numberPattern = regexp.MustCompile(`^\d{9}$`)
	pinPattern    = regexp.MustCompile(`^\d{4}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	patterns := map[string]*regexp.Regexp{
		"person_name":   namePattern,
		"email_shape":   emailPattern,
		"phone":         phonePattern,
		"zip_code":      zipPattern,
		"emoney_number": numberPattern,
		"emoney_pin":    pinPattern,
	}
	for tag, re := range patterns {
		re := re
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}
	return v
}

// Validate normalizes the raw form and checks it field by field. The payment
// method decides whether the e-money fields are looked at at all.
func Validate(form Form) (*Request, FieldErrors) {
	form = normalize(form)
	errs := FieldErrors{}

	collect(errs, "", validate.Struct(form))

	var payment PaymentMethod
	switch form.Payment.Method {
	case MethodEMoney:
		em := eMoneyForm{EMoneyNumber: form.Payment.EMoneyNumber, EMoneyPin: form.Payment.EMoneyPin}
		collect(errs, "payment.", validate.Struct(em))
		payment = EMoney{Number: em.EMoneyNumber, Pin: em.EMoneyPin}
	case MethodCash:
		payment = Cash{}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &Request{
		Billing: Billing{
			Name:        form.Billing.Name,
			Email:       form.Billing.Email,
			PhoneNumber: form.Billing.PhoneNumber,
		},
		Shipping: Shipping{
			Address: form.Shipping.Address,
			ZipCode: form.Shipping.ZipCode,
			City:    form.Shipping.City,
			Country: form.Shipping.Country,
		},
		Payment: payment,
	}, nil
}

// QuantityInRange reports whether q is an allowed cart quantity.
func QuantityInRange(q int) bool {
	return q >= MinQuantity && q <= MaxQuantity
}

func collect(errs FieldErrors, prefix string, err error) {
	if err == nil {
		return
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["form"] = err.Error()
		return
	}
	for _, fe := range verrs {
		path := prefix + stripRoot(fe.Namespace())
		if _, seen := errs[path]; seen {
			continue
		}
		errs[path] = message(path, fe.Tag(), fe.Param())
	}
}

func stripRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(path, tag, param string) string {
	if path == "payment.method" {
		return msgPaymentMethod
	}
	if tag == "required" {
		return msgRequired
	}

	switch path {
	case "billing.name":
		switch tag {
		case "min":
			return msgNameTooShort
		case "max":
			return msgNameTooLong
		}
		return msgNamePattern
	case "billing.email":
		return msgInvalidEmail
	case "billing.phoneNumber":
		return msgInvalidPhone
	case "shipping.zipCode":
		return msgInvalidZip
	case "shipping.address":
		return "Address must be at least " + param + " characters"
	case "shipping.city":
		return "City must be at least " + param + " characters"
	case "shipping.country":
		return "Country must be at least " + param + " characters"
	case "payment.eMoneyNumber":
		return msgInvalidNumber
	case "payment.eMoneyPin":
		return msgInvalidPin
	}
	return "invalid value"
}

func normalize(f Form) Form {
	f.Billing.Name = sanitize(f.Billing.Name)
	f.Billing.Email = sanitize(f.Billing.Email)
	f.Billing.PhoneNumber = sanitize(f.Billing.PhoneNumber)
	f.Shipping.Address = sanitize(f.Shipping.Address)
	f.Shipping.ZipCode = sanitize(f.Shipping.ZipCode)
	f.Shipping.City = sanitize(f.Shipping.City)
	f.Shipping.Country = sanitize(f.Shipping.Country)
	f.Payment.Method = strings.ToLower(sanitize(f.Payment.Method))
	f.Payment.EMoneyNumber = strings.TrimSpace(f.Payment.EMoneyNumber)
	f.Payment.EMoneyPin = strings.TrimSpace(f.Payment.EMoneyPin)
	return f
}

func sanitize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
