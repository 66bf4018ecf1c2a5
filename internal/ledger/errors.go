package ledger

import (
	"math"
	"strings"

	"github.com/semiha11/Fincio/internal/models"
)

// ValidationError rejects user input before any store changes. Message is
// meant to be shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

const (
	msgAmount      = "Lütfen geçerli bir tutar girin."
	msgName        = "Lütfen bir isim girin."
	msgQuantity    = "Lütfen geçerli bir miktar girin."
	msgSource      = "Geçersiz ödeme kaynağı."
	msgListType    = "Geçersiz gelir türü."
	msgSettings    = "Geçersiz ayarlar."
	msgInvalidData = "Geçersiz veri."
)

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", msgName)
	}
	return nil
}

func checkAmount(a models.Amount) error {
	if !positive(a.Float64()) {
		return invalid("amount", msgAmount)
	}
	return nil
}

// checkNonNegative accepts zero and positive finite amounts.
func checkNonNegative(field string, a models.Amount) error {
	if v := a.Float64(); !finite(v) || v < 0 {
		return invalid(field, msgAmount)
	}
	return nil
}
