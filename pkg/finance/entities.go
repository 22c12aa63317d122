// Package finance defines the persistent entities, value types, and
// result primitives used by bistrocore.
package finance

import "time"

// Category identifies the editable section of the dataset a record
// belongs to. Categories name persistence buckets and validation scopes.
type Category string

// Supported dataset categories.
const (
	// CategoryMenu identifies menu item records and their BOM lines.
	CategoryMenu Category = "menu"
	// CategorySales identifies the sales forecast model.
	CategorySales Category = "sales"
	// CategoryUtilities identifies recurring utility cost lines.
	CategoryUtilities Category = "utilities"
	// CategoryLabor identifies labor roles and their staffing cost.
	CategoryLabor Category = "labor"
	// CategoryFixedCosts identifies monthly fixed cost lines.
	CategoryFixedCosts Category = "fixed_costs"
	// CategoryDataset identifies the whole financial model.
	CategoryDataset Category = "dataset"
)

// IngredientLine is one BOM entry composing a menu item's plate cost.
type IngredientLine struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	UnitCost float64 `json:"unit_cost"`
}

// Cost returns the extended cost of the line.
func (l IngredientLine) Cost() float64 {
	return l.Quantity * l.UnitCost
}

// MenuItem is a sellable dish with its price, sales mix share, and BOM.
type MenuItem struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Category    string           `json:"category,omitempty"`
	Price       float64          `json:"price"`
	MixShare    float64          `json:"mix_share"`
	Ingredients []IngredientLine `json:"ingredients"`
}

// IngredientCost returns the summed BOM cost for one plate.
func (m MenuItem) IngredientCost() float64 {
	var total float64
	for _, line := range m.Ingredients {
		total += line.Cost()
	}
	return total
}

// SalesModel captures the demand forecast driving revenue projections.
type SalesModel struct {
	CoversPerDay     float64 `json:"covers_per_day"`
	AverageTicket    float64 `json:"average_ticket"`
	DaysOpenPerMonth int     `json:"days_open_per_month"`
}

// UtilityCost is a recurring utility line (power, gas, water, ...).
// Variable utilities scale with the scenario sales multiplier.
type UtilityCost struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	MonthlyCost float64 `json:"monthly_cost"`
	Variable    bool    `json:"variable,omitempty"`
}

// LaborRole describes one staffed role and its direct cost drivers.
type LaborRole struct {
	ID          string  `json:"id"`
	Role        string  `json:"role"`
	HourlyWage  float64 `json:"hourly_wage"`
	HoursPerDay float64 `json:"hours_per_day"`
	Headcount   int     `json:"headcount"`
}

// DailyCost returns the direct labor cost of the role for one open day.
func (r LaborRole) DailyCost() float64 {
	return r.HourlyWage * r.HoursPerDay * float64(r.Headcount)
}

// FixedCost is a monthly fixed expense line (rent, insurance, ...).
type FixedCost struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	MonthlyCost float64 `json:"monthly_cost"`
}

// Metadata carries bookkeeping fields for the dataset as a whole.
type Metadata struct {
	Name      string    `json:"name,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Dataset is the full financial model of the restaurant.
type Dataset struct {
	Menus      []MenuItem    `json:"menus"`
	Sales      SalesModel    `json:"sales"`
	Utilities  []UtilityCost `json:"utilities"`
	Labor      []LaborRole   `json:"labor"`
	FixedCosts []FixedCost   `json:"fixed_costs"`
	Metadata   Metadata      `json:"metadata"`
}

// FindMenu returns the menu item with the given id from the dataset.
func (d Dataset) FindMenu(id string) (MenuItem, bool) {
	for _, m := range d.Menus {
		if m.ID == id {
			return CloneMenuItem(m), true
		}
	}
	return MenuItem{}, false
}

// Scenario is a named alternate parameterization of the dataset that can
// be switched without altering the base model. Multipliers default to 1.
type Scenario struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	SalesMultiplier float64 `json:"sales_multiplier"`
	PriceMultiplier float64 `json:"price_multiplier"`
	CostMultiplier  float64 `json:"cost_multiplier"`
	Notes           string  `json:"notes,omitempty"`
}

// Normalized returns the scenario with zero-valued multipliers replaced
// by the identity multiplier.
func (s Scenario) Normalized() Scenario {
	if s.SalesMultiplier == 0 {
		s.SalesMultiplier = 1
	}
	if s.PriceMultiplier == 0 {
		s.PriceMultiplier = 1
	}
	if s.CostMultiplier == 0 {
		s.CostMultiplier = 1
	}
	return s
}
