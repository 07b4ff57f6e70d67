package model

import (
	"encoding/json"
	"math"
)

// encoding/json rejects ±Inf and NaN, and a zero node count produces them
// in the derived column. These wire types carry such values as null.

type rowJSON struct {
	Nodes             int      `json:"nodes"`
	Throughput        *float64 `json:"throughput"`
	PDR               *float64 `json:"pdr"`
	Delay             *float64 `json:"delay"`
	Collisions        *float64 `json:"collisions"`
	PerNodeThroughput *float64 `json:"per_node_throughput"`
}

type summaryJSON struct {
	MinThroughput       *float64    `json:"min_throughput"`
	MinThroughputNodes  int         `json:"min_throughput_nodes"`
	MaxThroughput       *float64    `json:"max_throughput"`
	MaxThroughputNodes  int         `json:"max_throughput_nodes"`
	MinPDR              *float64    `json:"min_pdr"`
	MinPDRNodes         int         `json:"min_pdr_nodes"`
	Lookup              DelayLookup `json:"lookup"`
	BaselineRow         int         `json:"baseline_row"`
	PeakRow             int         `json:"peak_row"`
	BaselineNodes       int         `json:"baseline_nodes"`
	PeakNodes           int         `json:"peak_nodes"`
	BaselineDelay       *float64    `json:"baseline_delay"`
	PeakDelay           *float64    `json:"peak_delay"`
	DelayIncreaseFactor *float64    `json:"delay_increase_factor"`
	IntegerColumns      []Column    `json:"integer_columns,omitempty"`
}

// finite returns a pointer to v, or nil if v is not finite.
func finite(v float64) *float64 {
	if !IsFinite(v) {
		return nil
	}
	return &v
}

// orNaN dereferences p, mapping nil to NaN.
func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// MarshalJSON implements json.Marshaler.
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(rowJSON{
		Nodes:             r.Nodes,
		Throughput:        finite(r.Throughput),
		PDR:               finite(r.PDR),
		Delay:             finite(r.Delay),
		Collisions:        finite(r.Collisions),
		PerNodeThroughput: finite(r.PerNodeThroughput),
	})
}

// UnmarshalJSON implements json.Unmarshaler. null decodes as NaN.
func (r *Row) UnmarshalJSON(data []byte) error {
	var w rowJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Row{
		Nodes:             w.Nodes,
		Throughput:        orNaN(w.Throughput),
		PDR:               orNaN(w.PDR),
		Delay:             orNaN(w.Delay),
		Collisions:        orNaN(w.Collisions),
		PerNodeThroughput: orNaN(w.PerNodeThroughput),
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(summaryJSON{
		MinThroughput:       finite(s.MinThroughput),
		MinThroughputNodes:  s.MinThroughputNodes,
		MaxThroughput:       finite(s.MaxThroughput),
		MaxThroughputNodes:  s.MaxThroughputNodes,
		MinPDR:              finite(s.MinPDR),
		MinPDRNodes:         s.MinPDRNodes,
		Lookup:              s.Lookup,
		BaselineRow:         s.BaselineRow,
		PeakRow:             s.PeakRow,
		BaselineNodes:       s.BaselineNodes,
		PeakNodes:           s.PeakNodes,
		BaselineDelay:       finite(s.BaselineDelay),
		PeakDelay:           finite(s.PeakDelay),
		DelayIncreaseFactor: finite(s.DelayIncreaseFactor),
		IntegerColumns:      s.IntegerColumns,
	})
}

// UnmarshalJSON implements json.Unmarshaler. null decodes as NaN.
func (s *Summary) UnmarshalJSON(data []byte) error {
	var w summaryJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Summary{
		MinThroughput:       orNaN(w.MinThroughput),
		MinThroughputNodes:  w.MinThroughputNodes,
		MaxThroughput:       orNaN(w.MaxThroughput),
		MaxThroughputNodes:  w.MaxThroughputNodes,
		MinPDR:              orNaN(w.MinPDR),
		MinPDRNodes:         w.MinPDRNodes,
		Lookup:              w.Lookup,
		BaselineRow:         w.BaselineRow,
		PeakRow:             w.PeakRow,
		BaselineNodes:       w.BaselineNodes,
		PeakNodes:           w.PeakNodes,
		BaselineDelay:       orNaN(w.BaselineDelay),
		PeakDelay:           orNaN(w.PeakDelay),
		DelayIncreaseFactor: orNaN(w.DelayIncreaseFactor),
		IntegerColumns:      w.IntegerColumns,
	}
	return nil
}
