package model

// MetricsFilter selects the scope and window of dashboard metrics.
type MetricsFilter struct {
	BaseID          string
	EquipmentTypeID string
	DateRange
}

// Breakdown splits net movement into its parts.
type Breakdown struct {
	Purchases    int `json:"purchases"`
	TransfersIn  int `json:"transfersIn"`
	TransfersOut int `json:"transfersOut"`
}

// Metrics is the balance summary shown on the dashboard.
//
// OpeningBalance is the present-day sum of current balances in scope, not
// a reconstruction at the start of the window.
type Metrics struct {
	OpeningBalance int       `json:"openingBalance"`
	ClosingBalance int       `json:"closingBalance"`
	NetMovement    int       `json:"netMovement"`
	AssignedAssets int       `json:"assignedAssets"`
	ExpendedAssets int       `json:"expendedAssets"`
	Breakdown      Breakdown `json:"breakdown"`
}

// Derive fills NetMovement and ClosingBalance from the other fields.
func (m *Metrics) Derive() {
	m.NetMovement = m.Breakdown.Purchases + m.Breakdown.TransfersIn - m.Breakdown.TransfersOut
	m.ClosingBalance = m.OpeningBalance + m.NetMovement - m.ExpendedAssets
}

// RecentActivity holds the latest records of each kind in scope.
type RecentActivity struct {
	Purchases   []Purchase   `json:"recentPurchases"`
	Transfers   []Transfer   `json:"recentTransfers"`
	Assignments []Assignment `json:"recentAssignments"`
}

// RecentActivityLimit is how many rows of each kind RecentActivity returns.
const RecentActivityLimit = 5
