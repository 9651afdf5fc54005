package quote

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// DefaultTaxRate is the flat sales tax applied to the subtotal.
const DefaultTaxRate = 0.08

// ErrUnknownMarginType is returned for margin types with no guardrail.
var ErrUnknownMarginType = errors.New("unknown margin type")

// MarginType selects a pricing category and its guardrail.
type MarginType string

const (
	MarginWholesale MarginType = "wholesale"
	MarginEvent     MarginType = "event"
	MarginRetail    MarginType = "retail"
)

// Guardrail is the acceptable margin band for a margin type.
type Guardrail struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Policy is the static pricing configuration.
type Policy struct {
	TaxRate    float64                  `yaml:"tax_rate"   json:"tax_rate"`
	Guardrails map[MarginType]Guardrail `yaml:"guardrails" json:"guardrails"`
}

// DefaultPolicy returns the standard tax rate and guardrail table.
func DefaultPolicy() Policy {
	return Policy{
		TaxRate: DefaultTaxRate,
		Guardrails: map[MarginType]Guardrail{
			MarginWholesale: {Min: 0.42, Max: 0.60},
			MarginEvent:     {Min: 0.50, Max: 0.70},
			MarginRetail:    {Min: 0.55, Max: 0.75},
		},
	}
}

// Guardrail returns the band for mt.
func (p Policy) Guardrail(mt MarginType) (Guardrail, error) {
	g, ok := p.Guardrails[mt]
	if !ok {
		return Guardrail{}, fmt.Errorf("%w: %q", ErrUnknownMarginType, mt)
	}
	return g, nil
}

// MarginTypes returns the configured margin types sorted by name.
func (p Policy) MarginTypes() []MarginType {
	out := make([]MarginType, 0, len(p.Guardrails))
	for mt := range p.Guardrails {
		out = append(out, mt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseMarginType resolves a user-entered margin type against the policy.
func (p Policy) ParseMarginType(s string) (MarginType, error) {
	mt := MarginType(strings.ToLower(strings.TrimSpace(s)))
	if _, err := p.Guardrail(mt); err != nil {
		return "", err
	}
	return mt, nil
}

// LineMargin is (price - cost) / price, or 0 when price is 0.
func LineMargin(cost, price float64) float64 {
	if price == 0 {
		return 0
	}
	return (price - cost) / price
}

// Subtotal sums the line totals.
func Subtotal(items []LineItem) float64 {
	var sum float64
	for _, li := range items {
		sum += li.LineTotal
	}
	return sum
}

// TotalCost sums the extended cost of every line.
func TotalCost(items []LineItem) float64 {
	var sum float64
	for _, li := range items {
		sum += li.Cost()
	}
	return sum
}

// Tax applies rate to subtotal.
func Tax(subtotal, rate float64) float64 {
	return subtotal * rate
}

// OverallMargin is the margin of aggregated cost and revenue. It is not the
// mean of the per-line margins.
func OverallMargin(items []LineItem) float64 {
	cost, revenue := TotalCost(items), Subtotal(items)
	if cost == 0 && revenue == 0 {
		return LineMargin(0, 0)
	}
	return LineMargin(cost, revenue)
}

// MeanLineMargin is the unweighted average of per-line margins. It is shown
// for comparison only.
func MeanLineMargin(items []LineItem) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, li := range items {
		sum += li.Margin
	}
	return sum / float64(len(items))
}

// Summary is the computed state of a quote.
type Summary struct {
	Items          int        `json:"items"`
	Subtotal       float64    `json:"subtotal"`
	Discount       float64    `json:"discount"`
	Tax            float64    `json:"tax"`
	Total          float64    `json:"total"`
	TotalCost      float64    `json:"total_cost"`
	OverallMargin  float64    `json:"overall_margin"`
	MarginType     MarginType `json:"margin_type"`
	Guardrail      Guardrail  `json:"guardrail"`
	BelowGuardrail bool       `json:"below_guardrail"`
	AboveGuardrail bool       `json:"above_guardrail"`
}

// Summarize computes totals and guardrail status. Discount is applied after
// tax is computed on the undiscounted subtotal.
func Summarize(items []LineItem, discount float64, mt MarginType, p Policy) (Summary, error) {
	if discount < 0 {
		return Summary{}, fmt.Errorf("discount: %w", ErrNegativeAmount)
	}
	g, err := p.Guardrail(mt)
	if err != nil {
		return Summary{}, err
	}

	subtotal := Subtotal(items)
	tax := Tax(subtotal, p.TaxRate)
	margin := OverallMargin(items)

	return Summary{
		Items:          len(items),
		Subtotal:       subtotal,
		Discount:       discount,
		Tax:            tax,
		Total:          subtotal - discount + tax,
		TotalCost:      TotalCost(items),
		OverallMargin:  margin,
		MarginType:     mt,
		Guardrail:      g,
		BelowGuardrail: len(items) > 0 && margin < g.Min,
		AboveGuardrail: len(items) > 0 && g.Max > 0 && margin > g.Max,
	}, nil
}

// RoundCents rounds an amount half away from zero to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatMoney renders an amount as "$1,234.50".
func FormatMoney(v float64) string {
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	whole, frac := cents/100, cents%100

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if neg && cents != 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), frac)
}

// FormatPercent renders a fraction as a percentage with one decimal.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
