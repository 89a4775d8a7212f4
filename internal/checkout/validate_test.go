package checkout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	return Form{
		Billing: BillingForm{
			Name:        "Alexei Ward",
			Email:       "alexei@mail.com",
			PhoneNumber: "+1 202-555-0136",
		},
		Shipping: ShippingForm{
			Address: "1137 Williams Avenue",
			ZipCode: "10001",
			City:    "New York",
			Country: "United States",
		},
		Payment: PaymentForm{
			Method:       MethodEMoney,
			EMoneyNumber: "238521993",
			EMoneyPin:    "6891",
		},
	}
}

func TestValidate_EMoney_OK(t *testing.T) {
	t.Parallel()

	req, errs := Validate(validForm())
	require.Empty(t, errs)
	require.NotNil(t, req)

	assert.Equal(t, "Alexei Ward", req.Billing.Name)
	assert.Equal(t, "10001", req.Shipping.ZipCode)

	em, ok := req.Payment.(EMoney)
	require.True(t, ok)
	assert.Equal(t, "238521993", em.Number)
	assert.Equal(t, "6891", em.Pin)
	assert.Equal(t, MethodEMoney, req.Payment.Kind())
}

func TestValidate_Normalizes(t *testing.T) {
	t.Parallel()

	f := validForm()
	f.Billing.Name = "  Alexei    Ward "
	f.Shipping.City = "\tNew   York\n"
	f.Payment.Method = " CASH "

	req, errs := Validate(f)
	require.Empty(t, errs)

	assert.Equal(t, "Alexei Ward", req.Billing.Name)
	assert.Equal(t, "New York", req.Shipping.City)
	assert.IsType(t, Cash{}, req.Payment)
}

func TestValidate_EMoneyNumberTooShort(t *testing.T) {
	t.Parallel()

	f := validForm()
	f.Payment.EMoneyNumber = "12345"

	req, errs := Validate(f)
	require.Nil(t, req)
	assert.Equal(t, "e-Money Number must be 9 digits", errs["payment.eMoneyNumber"])
	assert.NotContains(t, errs, "payment.eMoneyPin")
}

func TestValidate_CashIgnoresEMoneyFields(t *testing.T) {
	t.Parallel()

	f := validForm()
	f.Payment = PaymentForm{Method: MethodCash, EMoneyNumber: "12345"}

	req, errs := Validate(f)
	require.Empty(t, errs)
	assert.Equal(t, Cash{}, req.Payment)
	assert.Equal(t, MethodCash, req.Payment.Kind())
}

func TestValidate_EMoneyMissingFields(t *testing.T) {
	t.Parallel()

	f := validForm()
	f.Payment = PaymentForm{Method: MethodEMoney}

	_, errs := Validate(f)
	assert.Equal(t, msgRequired, errs["payment.eMoneyNumber"])
	assert.Equal(t, msgRequired, errs["payment.eMoneyPin"])
}

func TestValidate_UnknownPaymentMethod(t *testing.T) {
	t.Parallel()

	f := validForm()
	f.Payment = PaymentForm{Method: "card"}

	_, errs := Validate(f)
	assert.Equal(t, msgPaymentMethod, errs["payment.method"])
	assert.Len(t, errs, 1)
}

func TestValidate_FieldRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Form)
		path   string
		msg    string
	}{
		{"name required", func(f *Form) { f.Billing.Name = "" }, "billing.name", msgRequired},
		{"name too short", func(f *Form) { f.Billing.Name = "A" }, "billing.name", msgNameTooShort},
		{"name too long", func(f *Form) { f.Billing.Name = strings.Repeat("a", 51) }, "billing.name", msgNameTooLong},
		{"name pattern", func(f *Form) { f.Billing.Name = "R2-D2" }, "billing.name", msgNamePattern},
		{"name apostrophe ok", func(f *Form) { f.Billing.Name = "Shaquille O'Neal-Smith" }, "", ""},
		{"email shape", func(f *Form) { f.Billing.Email = "alexei@mail" }, "billing.email", msgInvalidEmail},
		{"email spaces", func(f *Form) { f.Billing.Email = "ale xei@mail.com" }, "billing.email", msgInvalidEmail},
		{"phone too short", func(f *Form) { f.Billing.PhoneNumber = "555-0136" }, "billing.phoneNumber", msgInvalidPhone},
		{"phone letters", func(f *Form) { f.Billing.PhoneNumber = "202-555-CALL" }, "billing.phoneNumber", msgInvalidPhone},
		{"phone too long", func(f *Form) { f.Billing.PhoneNumber = strings.Repeat("1", 21) }, "billing.phoneNumber", msgInvalidPhone},
		{"address short", func(f *Form) { f.Shipping.Address = "Main" }, "shipping.address", "Address must be at least 5 characters"},
		{"zip short", func(f *Form) { f.Shipping.ZipCode = "10" }, "shipping.zipCode", msgInvalidZip},
		{"zip long", func(f *Form) { f.Shipping.ZipCode = "12345678901" }, "shipping.zipCode", msgInvalidZip},
		{"zip symbols", func(f *Form) { f.Shipping.ZipCode = "10#01" }, "shipping.zipCode", msgInvalidZip},
		{"zip hyphen ok", func(f *Form) { f.Shipping.ZipCode = "SW1A-1AA" }, "", ""},
		{"city short", func(f *Form) { f.Shipping.City = "N" }, "shipping.city", "City must be at least 2 characters"},
		{"country missing", func(f *Form) { f.Shipping.Country = "   " }, "shipping.country", msgRequired},
		{"pin letters", func(f *Form) { f.Payment.EMoneyPin = "12a4" }, "payment.eMoneyPin", msgInvalidPin},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := validForm()
			tt.mutate(&f)

			req, errs := Validate(f)
			if tt.path == "" {
				require.Empty(t, errs)
				require.NotNil(t, req)
				return
			}
			require.Nil(t, req)
			assert.Equal(t, tt.msg, errs[tt.path])
			assert.Len(t, errs, 1)
		})
	}
}

func TestFieldErrors_Error(t *testing.T) {
	t.Parallel()

	errs := FieldErrors{"shipping.city": "b", "billing.email": "a"}
	assert.Equal(t, "invalid checkout form: billing.email: a; shipping.city: b", errs.Error())
}

func TestQuantityInRange(t *testing.T) {
	t.Parallel()

	assert.False(t, QuantityInRange(0))
	assert.True(t, QuantityInRange(1))
	assert.True(t, QuantityInRange(10))
	assert.False(t, QuantityInRange(11))
}
