package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// CardDetails represents the payment card form as submitted by the user.
// Fields may still carry display formatting (spaces, dashes, "MM / YY");
// validation always runs on the normalized representation.
type CardDetails struct {
	HolderName string `json:"holder_name"`
	Number     string `json:"number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

// Validate validates the card details on their normalized form
func (c *CardDetails) Validate() error {
	if err := c.validateHolderName(); err != nil {
		return err
	}

	if err := c.validateNumber(); err != nil {
		return err
	}

	if err := c.validateExpiry(); err != nil {
		return err
	}

	if err := c.validateCVV(); err != nil {
		return err
	}

	return nil
}

// NormalizedNumber returns the card number with separators stripped.
func (c *CardDetails) NormalizedNumber() string {
	return stripSeparators(c.Number)
}

// NormalizedExpiry returns the expiry as "MM/YY", or an error if both
// parts are not present.
func (c *CardDetails) NormalizedExpiry() (string, error) {
	raw := strings.ReplaceAll(c.Expiry, " ", "")
	raw = strings.ReplaceAll(raw, "-", "/")

	parts := strings.Split(raw, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", errors.New("expiry must be in MM/YY format")
	}

	month, year := parts[0], parts[1]
	if len(month) == 1 {
		month = "0" + month
	}

	if len(month) != 2 || !isDigits(month) {
		return "", errors.New("expiry month is invalid")
	}

	if len(year) == 4 {
		year = year[2:]
	}

	if len(year) != 2 || !isDigits(year) {
		return "", errors.New("expiry year is invalid")
	}

	if month < "01" || month > "12" {
		return "", errors.New("expiry month must be between 01 and 12")
	}

	return fmt.Sprintf("%s/%s", month, year), nil
}

// validateHolderName validates the card holder name
func (c *CardDetails) validateHolderName() error {
	if strings.TrimSpace(c.HolderName) == "" {
		return errors.New("card holder name is required")
	}

	return nil
}

// validateNumber validates the card number after stripping separators
func (c *CardDetails) validateNumber() error {
	number := c.NormalizedNumber()

	if number == "" {
		return errors.New("card number is required")
	}

	if !isDigits(number) {
		return errors.New("card number must contain only digits")
	}

	if len(number) != 16 {
		return fmt.Errorf("card number must be 16 digits (got %d)", len(number))
	}

	return nil
}

// validateExpiry validates the card expiry date
func (c *CardDetails) validateExpiry() error {
	_, err := c.NormalizedExpiry()
	return err
}

// validateCVV validates the card security code
func (c *CardDetails) validateCVV() error {
	cvv := strings.TrimSpace(c.CVV)

	if cvv == "" {
		return errors.New("security code is required")
	}

	if !isDigits(cvv) {
		return errors.New("security code must contain only digits")
	}

	if len(cvv) < 3 || len(cvv) > 4 {
		return errors.New("security code must be 3 or 4 digits")
	}

	return nil
}

// stripSeparators removes spaces and dashes from a card number
func stripSeparators(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == ' ' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isDigits returns true if the string is non-empty and all ASCII digits
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
