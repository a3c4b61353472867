package validation

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/mycoach/internal/api"
)

func TestClient(t *testing.T) {
	tests := []struct {
		name      string
		form      ClientForm
		wantField string
		wantType  ErrorType
	}{
		{"valid", ClientForm{Name: "Alice", HourlyRate: "50"}, "", ""},
		{"blank rate is zero", ClientForm{Name: "Bob"}, "", ""},
		{"empty name", ClientForm{Name: ""}, "name", ErrorTypeRequired},
		{"whitespace name", ClientForm{Name: "   "}, "name", ErrorTypeRequired},
		{"bad rate", ClientForm{Name: "A", HourlyRate: "fifty"}, "hourly_rate", ErrorTypeInvalidFormat},
		{"negative rate", ClientForm{Name: "A", HourlyRate: "-1"}, "hourly_rate", ErrorTypeInvalidRange},
		{"bad email", ClientForm{Name: "A", Email: "nope"}, "email", ErrorTypeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Client(tt.form)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			fes := ve.FieldErrors(tt.wantField)
			require.Len(t, fes, 1)
			assert.Equal(t, tt.wantType, fes[0].Type)
		})
	}
}

func TestClient_TrimsAndDropsBlankOptionals(t *testing.T) {
	req, err := Client(ClientForm{Name: "  Alice ", Email: " ", Phone: "555", HourlyRate: "12.50"})
	require.NoError(t, err)

	assert.Equal(t, "Alice", req.Name)
	assert.Nil(t, req.Email)
	require.NotNil(t, req.Phone)
	assert.Equal(t, "555", *req.Phone)
	assert.True(t, req.HourlyRate.Equal(api.MustMoney("12.5")))
}

func TestSession(t *testing.T) {
	req, err := Session(SessionForm{ClientID: 3, Date: "2024-05-01", Duration: "90", Billed: true})
	require.NoError(t, err)
	assert.Equal(t, api.SessionRequest{ClientID: 3, Date: "2024-05-01", DurationMinutes: 90, Billed: true}, req)

	_, err = Session(SessionForm{Date: "05/01/2024", Duration: "0"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.FieldErrors("client"), 1)
	assert.Equal(t, ErrorTypeInvalidFormat, ve.FieldErrors("date")[0].Type)
	assert.Equal(t, ErrorTypeInvalidRange, ve.FieldErrors("duration")[0].Type)
}

func TestPayment(t *testing.T) {
	req, err := Payment(PaymentForm{ClientID: 1, Date: "2024-05-01", Amount: "75.00", Method: "cash"})
	require.NoError(t, err)
	assert.True(t, req.Amount.Equal(api.MoneyFromInt(75)))
	assert.Equal(t, "cash", api.Deref(req.Method))

	for _, amount := range []string{"", "abc", "12,50"} {
		_, err := Payment(PaymentForm{ClientID: 1, Date: "2024-05-01", Amount: amount})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "amount %q", amount)
		assert.Len(t, ve.FieldErrors("amount"), 1, "amount %q", amount)
	}
}

func TestPayment_AcceptsZeroAndNegativeAmounts(t *testing.T) {
	tests := []struct {
		amount string
		want   api.Money
	}{
		{"0", api.MoneyFromInt(0)},
		{"-25.00", api.MoneyFromInt(-25)},
		{" -0.50 ", api.MustMoney("-0.5")},
	}
	for _, tt := range tests {
		req, err := Payment(PaymentForm{ClientID: 1, Date: "2026-01-02", Amount: tt.amount})
		require.NoError(t, err, "amount %q", tt.amount)
		assert.True(t, req.Amount.Equal(tt.want), "amount %q = %s", tt.amount, req.Amount.Format())
	}
}

func TestCalendarEvent(t *testing.T) {
	req, err := CalendarEvent(EventForm{Title: "Intro call", Start: "2024-05-01 09:30", Duration: "45"})
	require.NoError(t, err)

	start, err := time.Parse(time.RFC3339, req.Start)
	require.NoError(t, err)
	want := time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)
	assert.True(t, start.Equal(want), "start = %v, want %v", start, want)
	assert.Equal(t, 45, req.DurationMinutes)

	_, err = CalendarEvent(EventForm{Start: "tomorrow", Duration: "x"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 3)
}

func TestValidationError_Messages(t *testing.T) {
	_, err := Client(ClientForm{})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.True(t, IsValidationError(fmt.Errorf("form: %w", err)))
	assert.False(t, IsValidationError(errors.New("other")))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name is required", ve.UserMessage())
	assert.Contains(t, ve.Error(), "field 'name'")
}
