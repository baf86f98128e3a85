package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of a calendar date.
const DateLayout = "2006-01-02"

// NoApplicableFeeMessage is returned to clients when the fee rule does not
// cover a transfer.
const NoApplicableFeeMessage = "No applicable fee exists for this transfer date and amount combination"

// Money goes over the wire as JSON numbers. Requests may still send quoted
// strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

var accountNumberPattern = regexp.MustCompile(`^\d{10}$`)

// ValidAccountNumber reports whether s is exactly ten digits.
func ValidAccountNumber(s string) bool {
	return accountNumberPattern.MatchString(s)
}

type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

// ParseTransferStatus accepts a status name in any letter case.
func ParseTransferStatus(s string) (TransferStatus, bool) {
	status := TransferStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case TransferStatusPending, TransferStatusCompleted, TransferStatusCancelled:
		return status, true
	}
	return "", false
}

// Date is a calendar date without a time of day. The zero value means unset.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in t's location, returned in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// IsWeekend reports whether the date falls on a Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Account struct {
	AccountNumber string          `json:"accountNumber"`
	AccountName   string          `json:"accountName"`
	Balance       decimal.Decimal `json:"balance"`
}

type Transfer struct {
	ID                 int64           `json:"id"`
	OriginAccount      string          `json:"originAccount"`
	DestinationAccount string          `json:"destinationAccount"`
	Amount             decimal.Decimal `json:"amount"`
	Fee                decimal.Decimal `json:"fee"`
	TransferDate       Date            `json:"transferDate"`
	ScheduledDate      time.Time       `json:"scheduledDate"`
	Status             TransferStatus  `json:"status"`
}

// Clone returns a copy that shares no state with t.
func (t *Transfer) Clone() *Transfer {
	c := *t
	return &c
}

type CreateTransferRequest struct {
	OriginAccount      string           `json:"originAccount"`
	DestinationAccount string           `json:"destinationAccount"`
	Amount             *decimal.Decimal `json:"amount"`
	TransferDate       Date             `json:"transferDate"`
}

type FeeResponse struct {
	Amount decimal.Decimal `json:"amount"`
	Date   Date            `json:"date"`
	Fee    decimal.Decimal `json:"fee"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
