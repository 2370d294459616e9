// Package projection computes the five-year revenue projection and the
// discounted-cash-flow present value shown on the projections screen.
package projection

import (
	"errors"
	"fmt"

	"github.com/iwvelando/company-valuation/pkg/constants"
	"github.com/iwvelando/company-valuation/pkg/format"
	"github.com/iwvelando/company-valuation/pkg/mathutil"
	"go.uber.org/zap"
)

var (
	ErrInvalidBaseRevenue = errors.New("base revenue must be a positive number")
	ErrInvalidAssumptions = errors.New("invalid projection assumptions")
)

// Assumptions are the fixed model inputs. Growth holds one rate per projected year.
type Assumptions struct {
	Growth         []float64 `yaml:"growth" mapstructure:"growth" json:"growth"`
	ExpenseRatio   float64   `yaml:"expenseRatio" mapstructure:"expenseRatio" json:"expenseRatio"`
	DiscountRate   float64   `yaml:"discountRate" mapstructure:"discountRate" json:"discountRate"`
	TerminalGrowth float64   `yaml:"terminalGrowth" mapstructure:"terminalGrowth" json:"terminalGrowth"`
}

// DefaultAssumptions returns 25/20/18/15/12% growth, a 70% expense ratio, a 10%
// discount rate and 3% terminal growth.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		Growth:         constants.DefaultGrowthSchedule(),
		ExpenseRatio:   constants.DefaultExpenseRatio,
		DiscountRate:   constants.DefaultDiscountRate,
		TerminalGrowth: constants.DefaultTerminalGrowth,
	}
}

// Validate checks that the assumptions describe a computable model.
func (a Assumptions) Validate() error {
	if len(a.Growth) == 0 {
		return fmt.Errorf("%w: growth schedule is empty", ErrInvalidAssumptions)
	}
	for i, rate := range a.Growth {
		if !mathutil.IsFinite(rate) || rate <= -1 {
			return fmt.Errorf("%w: growth rate %d is %v", ErrInvalidAssumptions, i+1, rate)
		}
	}
	if !mathutil.IsFinite(a.ExpenseRatio) || a.ExpenseRatio < 0 || a.ExpenseRatio > 1 {
		return fmt.Errorf("%w: expense ratio %v outside [0, 1]", ErrInvalidAssumptions, a.ExpenseRatio)
	}
	if !mathutil.IsFinite(a.DiscountRate) || a.DiscountRate <= -1 {
		return fmt.Errorf("%w: discount rate %v", ErrInvalidAssumptions, a.DiscountRate)
	}
	if !mathutil.IsFinite(a.TerminalGrowth) || a.DiscountRate <= a.TerminalGrowth {
		return fmt.Errorf("%w: discount rate %v must exceed terminal growth %v",
			ErrInvalidAssumptions, a.DiscountRate, a.TerminalGrowth)
	}
	return nil
}

// Year is one row of the projection table.
type Year struct {
	Year       int     `json:"year"`
	Growth     float64 `json:"growth"`
	Revenue    float64 `json:"revenue"`
	Expenses   float64 `json:"expenses"`
	NetIncome  float64 `json:"netIncome"`
	Discounted float64 `json:"discounted"`
}

// Projection is the full result for one base revenue.
type Projection struct {
	BaseRevenue         float64     `json:"baseRevenue"`
	Years               []Year      `json:"years"`
	TerminalValue       float64     `json:"terminalValue"`
	DiscountedTerminal  float64     `json:"discountedTerminal"`
	SumDiscountedIncome float64     `json:"sumDiscountedIncome"`
	PresentValue        float64     `json:"presentValue"`
	Assumptions         Assumptions `json:"assumptions"`
}

// Calculator produces projections with a fixed set of assumptions.
type Calculator struct {
	logger      *zap.Logger
	assumptions Assumptions
}

// NewCalculator validates the assumptions once so every later call can rely on them.
func NewCalculator(logger *zap.Logger, assumptions Assumptions) (*Calculator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := assumptions.Validate(); err != nil {
		return nil, err
	}
	growth := append([]float64(nil), assumptions.Growth...)
	assumptions.Growth = growth
	return &Calculator{logger: logger, assumptions: assumptions}, nil
}

// Assumptions returns a copy of the calculator's assumptions.
func (c *Calculator) Assumptions() Assumptions {
	a := c.assumptions
	a.Growth = append([]float64(nil), a.Growth...)
	return a
}

// Project compounds the growth schedule over baseRevenue, discounts every
// year's net income and adds a Gordon-growth terminal value discounted at the
// final year. Unrounded values are carried; only the reported figures are
// rounded to cents.
func (c *Calculator) Project(baseRevenue float64) (*Projection, error) {
	if !mathutil.IsFinite(baseRevenue) || baseRevenue <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidBaseRevenue, baseRevenue)
	}

	a := c.assumptions
	result := &Projection{
		BaseRevenue: baseRevenue,
		Years:       make([]Year, 0, len(a.Growth)),
		Assumptions: c.Assumptions(),
	}

	revenue := baseRevenue
	var net, sumDiscounted float64
	for i, rate := range a.Growth {
		period := i + 1
		revenue = mathutil.Grow(revenue, rate)
		expenses := revenue * a.ExpenseRatio
		net = revenue - expenses
		discounted := mathutil.Discount(net, a.DiscountRate, period)
		sumDiscounted += discounted

		result.Years = append(result.Years, Year{
			Year:       period,
			Growth:     rate,
			Revenue:    mathutil.Round(revenue),
			Expenses:   mathutil.Round(expenses),
			NetIncome:  mathutil.Round(net),
			Discounted: mathutil.Round(discounted),
		})
	}

	terminal := net * (1 + a.TerminalGrowth) / (a.DiscountRate - a.TerminalGrowth)
	discountedTerminal := mathutil.Discount(terminal, a.DiscountRate, len(a.Growth))

	result.TerminalValue = mathutil.Round(terminal)
	result.DiscountedTerminal = mathutil.Round(discountedTerminal)
	result.SumDiscountedIncome = mathutil.Round(sumDiscounted)
	result.PresentValue = mathutil.Round(sumDiscounted + discountedTerminal)

	c.logger.Debug("projection computed",
		zap.String("op", "projection.Project"),
		zap.Float64("baseRevenue", baseRevenue),
		zap.Float64("presentValue", result.PresentValue),
	)

	return result, nil
}

// ProjectInput parses a user-typed amount and projects it.
func (c *Calculator) ProjectInput(raw string) (*Projection, error) {
	amount, err := format.ParseAmount(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseRevenue, err)
	}
	return c.Project(amount)
}
