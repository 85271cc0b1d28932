// Package customer looks up caller account records by phone number.
package customer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode"

	"csr-insights-go/internal/types"
)

// ErrNotFound is returned when no customer matches a phone number.
var ErrNotFound = errors.New("customer not found")

// Directory resolves a phone number to a customer record.
type Directory interface {
	Lookup(ctx context.Context, phone string) (types.CustomerInfo, error)
}

// Digits strips everything but digits from a phone number.
func Digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone reduces a phone number to its last ten digits, which
// drops a US country code. Shorter numbers are returned as plain digits.
func NormalizePhone(phone string) string {
	d := Digits(phone)
	if len(d) >= 10 {
		return d[len(d)-10:]
	}
	return d
}

// MemoryDirectory keeps customers in memory keyed by normalized phone.
type MemoryDirectory struct {
	mu        sync.RWMutex
	customers map[string]types.CustomerInfo
}

func NewMemoryDirectory(seed ...types.CustomerInfo) *MemoryDirectory {
	d := &MemoryDirectory{customers: map[string]types.CustomerInfo{}}
	for _, c := range seed {
		d.Put(c)
	}
	return d
}

// Put adds or replaces a customer.
func (d *MemoryDirectory) Put(c types.CustomerInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.customers[NormalizePhone(c.PhoneNumber)] = c
}

// Lookup matches on the last ten digits, so "+1 (555) 123-4567",
// "15551234567" and "555-123-4567" find the same record.
func (d *MemoryDirectory) Lookup(_ context.Context, phone string) (types.CustomerInfo, error) {
	key := NormalizePhone(phone)
	if key == "" {
		return types.CustomerInfo{}, ErrNotFound
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.customers[key]
	if !ok {
		return types.CustomerInfo{}, ErrNotFound
	}
	return c, nil
}

func (d *MemoryDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.customers)
}

// ReferenceCustomers returns the demo accounts, with last-call dates
// relative to now.
func ReferenceCustomers(now time.Time) []types.CustomerInfo {
	ago := func(days int) string { return now.AddDate(0, 0, -days).Format(time.RFC3339) }
	return []types.CustomerInfo{
		{
			PhoneNumber: "5551234567", Name: "John Smith", Email: "john.smith@email.com", AccountID: "ACC001234",
			Plan: "Magenta Max", MonthlyBill: 85, AccountAgeMonths: 24, PreviousCalls: 3, LastCallDate: ago(15),
			PreviousSentiment: "neutral", Notes: "Generally satisfied customer. Had billing question last month.",
			Location: "Dallas, TX",
		},
		{
			PhoneNumber: "5559876543", Name: "Maria Garcia", Email: "maria.garcia@email.com", AccountID: "ACC005678",
			Plan: "Essentials", MonthlyBill: 60, AccountAgeMonths: 6, PreviousCalls: 1, LastCallDate: ago(45),
			PreviousSentiment: "positive", Notes: "New customer. Happy with service so far.",
			Location: "Los Angeles, CA",
		},
		{
			PhoneNumber: "5555551234", Name: "Robert Johnson", Email: "robert.j@email.com", AccountID: "ACC009876",
			Plan: "Magenta", MonthlyBill: 70, AccountAgeMonths: 36, PreviousCalls: 8, LastCallDate: ago(5),
			PreviousSentiment: "negative", Notes: "Frequent caller with coverage problems at home. Considered switching last month.",
			Location: "Rural Montana",
		},
		{
			PhoneNumber: "5551112222", Name: "Sarah Williams", Email: "sarah.w@email.com", AccountID: "ACC001122",
			Plan: "Magenta Max", MonthlyBill: 90, AccountAgeMonths: 12, PreviousCalls: 2, LastCallDate: ago(30),
			PreviousSentiment: "positive", Notes: "Tech-savvy. Usually calls about plan upgrades.",
			Location: "Seattle, WA",
		},
		{
			PhoneNumber: "5553334444", Name: "Michael Brown", Email: "mike.brown@email.com", AccountID: "ACC003344",
			Plan: "Essentials", MonthlyBill: 60, AccountAgeMonths: 18, PreviousCalls: 5, LastCallDate: ago(10),
			PreviousSentiment: "very_negative", Notes: "Recent billing dispute over an overcharge. Handle carefully.",
			Location: "Chicago, IL",
		},
	}
}
