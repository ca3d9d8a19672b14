package scale

// Row is one grade of a master scale. Distribution shares are over the
// whole sample.
type Row struct {
	Grade       int     `json:"grade"`
	PDLower     float64 `json:"pd_lower"`
	PDUpper     float64 `json:"pd_upper"`
	Total       int     `json:"total"`
	Good        int     `json:"good"`
	Bad         int     `json:"bad"`
	TotalShare  float64 `json:"total_share"`
	GoodShare   float64 `json:"good_share"`
	BadShare    float64 `json:"bad_share"`
	BadRate     float64 `json:"bad_rate"`
	AvgPD       float64 `json:"avg_pd"`
	StdPD       float64 `json:"std_pd"`
	Score       float64 `json:"score"`
	ScaledScore float64 `json:"scaled_score,omitempty"`
	HasScaled   bool    `json:"has_scaled"`
}

// MasterScale is an ordered set of grades with non-decreasing average PD
type MasterScale struct {
	Rows []Row `json:"rows"`
}

// Observations returns the total population across grades
func (m MasterScale) Observations() int {
	n := 0
	for _, r := range m.Rows {
		n += r.Total
	}
	return n
}

// Bads returns the total number of defaults across grades
func (m MasterScale) Bads() int {
	n := 0
	for _, r := range m.Rows {
		n += r.Bad
	}
	return n
}

// Clone returns a deep copy
func (m MasterScale) Clone() MasterScale {
	return MasterScale{Rows: append([]Row(nil), m.Rows...)}
}
