// Package orbit defines the canonical orbital-element record served by the API
// and the mappers that build it from upstream shapes.
//
// Two sources feed the same Record type:
//
//   - NeoWs browse objects (FromBrowseObject), decoded loosely so a single
//     malformed field degrades to null instead of failing the page
//   - flat CSV rows (FromCSVRow), where every cell is a string
//
// Numeric fields are pointers: nil marshals as JSON null and means the
// upstream value was absent or could not be coerced to a finite float.
package orbit

// Record is the canonical orbital-element record. All fields are always
// serialized.
type Record struct {
	ID             *string  `json:"id"`
	Name           *string  `json:"name"`
	Hazardous      bool     `json:"hazardous"`
	A              *float64 `json:"a"`
	E              *float64 `json:"e"`
	I              *float64 `json:"i"`
	Om             *float64 `json:"om"`
	W              *float64 `json:"w"`
	Epoch          *float64 `json:"epoch"`
	MeanAnomalyDeg *float64 `json:"mean_anomaly_deg"`
	M0             *float64 `json:"M0"`
}

// Page is the list envelope returned by the collection endpoints.
type Page struct {
	Count int      `json:"count"`
	Items []Record `json:"items"`
}

// NewPage wraps items in a Page. A nil slice becomes an empty one so the
// envelope always serializes "items": [].
func NewPage(items []Record) Page {
	if items == nil {
		items = []Record{}
	}
	return Page{Count: len(items), Items: items}
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
