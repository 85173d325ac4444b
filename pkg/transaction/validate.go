package transaction

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Field names reported by ValidationError
const (
	FieldID     = "id"
	FieldName   = "name"
	FieldPrice  = "price"
	FieldDate   = "date"
	FieldBudget = "budget"
)

// Amounts are limited so that their text form stays small
const (
	MaxAmountExponent = 64
	MaxAmountDigits   = 64
)

// ValidationError reports raw user input that was rejected
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Fields are the user-editable parts of a record
type Fields struct {
	Name  string
	Price decimal.Decimal
	Date  string
}

// ParseFields validates raw form input. Price is checked first, then name,
// then date; the first failure is returned.
func ParseFields(name, price, date string) (Fields, error) {
	p, err := ParseAmount(FieldPrice, price)
	if err != nil {
		return Fields{}, err
	}
	if p.IsNegative() {
		return Fields{}, &ValidationError{Field: FieldPrice, Reason: "item price cannot be negative"}
	}
	if name == "" {
		return Fields{}, &ValidationError{Field: FieldName, Reason: "item name cannot be empty"}
	}
	if date == "" {
		return Fields{}, &ValidationError{Field: FieldDate, Reason: "transaction date cannot be empty"}
	}
	return Fields{Name: name, Price: p, Date: date}, nil
}

// ParseAmount parses a decimal number, ignoring surrounding whitespace.
// field names the input in the returned ValidationError.
func ParseAmount(field, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, &ValidationError{Field: field, Reason: "a number is required"}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a valid number", raw)}
	}
	if err := CheckAmount(field, d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// CheckAmount rejects amounts whose exponent or digit count is out of range
func CheckAmount(field string, d decimal.Decimal) error {
	exp := d.Exponent()
	if exp > MaxAmountExponent || exp < -MaxAmountExponent || d.NumDigits() > MaxAmountDigits {
		return &ValidationError{Field: field, Reason: "number is out of range"}
	}
	return nil
}

// Apply copies the fields onto r, leaving its id untouched
func (f Fields) Apply(r *Record) {
	r.Name = f.Name
	r.Price = f.Price
	r.Date = f.Date
}
