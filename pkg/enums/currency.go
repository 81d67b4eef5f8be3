package enums

// Currency represents supported monetary denominations. The platform bills in
// New Zealand dollars only; amounts are always integer cents.
type Currency string

const (
	CurrencyNZD Currency = "NZD"
)

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}
