package domain

import "strings"

// Specs is a resource allocation: RAM and disk in GB, CPU in percent of a core.
type Specs struct {
	RAM  int `json:"ram" validate:"min=1"`
	Disk int `json:"disk" validate:"min=1"`
	CPU  int `json:"cpu" validate:"min=1"`
}

// Fits reports whether s stays within limit on every axis.
func (s Specs) Fits(limit Specs) bool {
	return s.RAM <= limit.RAM && s.Disk <= limit.Disk && s.CPU <= limit.CPU
}

type Plan struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Specs  Specs  `json:"specs"`
	Price  string `json:"price"`
	IsFree bool   `json:"is_free"`
}

const FreePlanID = "free"

var plans = []Plan{
	{ID: FreePlanID, Name: "Free", Specs: Specs{RAM: 2, Disk: 10, CPU: 50}, Price: "Free", IsFree: true},
	{ID: "basic", Name: "Basic", Specs: Specs{RAM: 4, Disk: 20, CPU: 100}, Price: "₹250/month"},
	{ID: "standard", Name: "Standard", Specs: Specs{RAM: 8, Disk: 40, CPU: 150}, Price: "₹500/month"},
	{ID: "premium", Name: "Premium", Specs: Specs{RAM: 16, Disk: 80, CPU: 200}, Price: "₹1000/month"},
	{ID: "pro", Name: "Pro", Specs: Specs{RAM: 32, Disk: 160, CPU: 300}, Price: "₹2000/month"},
	{ID: "ultimate", Name: "Ultimate", Specs: Specs{RAM: 64, Disk: 320, CPU: 400}, Price: "₹4000/month"},
	{ID: "enterprise", Name: "Enterprise", Specs: Specs{RAM: 100, Disk: 1000, CPU: 500}, Price: "₹7500/month"},
	// "unlimited" tier; the numbers are display sentinels.
	{ID: "infinity", Name: "Infinity", Specs: Specs{RAM: 999, Disk: 9999, CPU: 100}, Price: "₹25000/month"},
}

// Plans returns a copy of the plan catalog in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// LookupPlan finds a plan by id or by name, case-insensitively.
func LookupPlan(key string) (Plan, bool) {
	for _, p := range plans {
		if strings.EqualFold(p.ID, key) || strings.EqualFold(p.Name, key) {
			return p, true
		}
	}
	return Plan{}, false
}
