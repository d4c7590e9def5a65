package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"clinicore/internal/domain"
)

var (
	reID   = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reTime = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// ID validates a resource identifier (product/patient/provider/slot ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Qty parses a positive quantity, capped to keep a single request from
// draining inventory by typo.
func Qty(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 1000 {
		return 0, false
	}
	return n, true
}

// Delta parses a signed stock adjustment; zero is not an adjustment.
func Delta(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n == 0 || n < -1000 || n > 1000 {
		return 0, false
	}
	return n, true
}

// Amount parses a positive decimal money amount.
func Amount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// Reason maps the caller-supplied reason enum. No substring guessing:
// unknown values are rejected, not classified.
func Reason(s string) (domain.StockReason, bool) {
	switch domain.StockReason(strings.ToUpper(strings.TrimSpace(s))) {
	case domain.ReasonRestock:
		return domain.ReasonRestock, true
	case domain.ReasonSale:
		return domain.ReasonSale, true
	case domain.ReasonAdjustment:
		return domain.ReasonAdjustment, true
	}
	return "", false
}

// Method validates a payment method.
func Method(s string) (string, bool) {
	m := strings.ToUpper(strings.TrimSpace(s))
	switch m {
	case "CASH", "CARD", "INSURANCE", "TRANSFER":
		return m, true
	}
	return "", false
}

// Date validates a calendar date in YYYY-MM-DD form.
func Date(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", false
	}
	return s, true
}

// TimeOfDay validates an HH:MM slot boundary.
func TimeOfDay(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reTime.MatchString(s)
}

// Weekday validates a 0-6 weekday (Sunday = 0).
func Weekday(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 6 {
		return 0, false
	}
	return n, true
}

// Address validates a free-text delivery address with a sane cap.
func Address(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 200 {
		return "", false
	}
	return s, true
}
