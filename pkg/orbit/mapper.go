package orbit

// BrowseObject is one entry of the NeoWs browse "near_earth_objects" array.
// Fields are decoded as untyped JSON so that a wrongly typed value reaches
// the coercion rules instead of failing the whole response.
type BrowseObject struct {
	ID          any `json:"id"`
	Name        any `json:"name"`
	Hazardous   any `json:"is_potentially_hazardous_asteroid"`
	OrbitalData any `json:"orbital_data"`
}

// NeoWs orbital_data keys.
const (
	keySemiMajorAxis   = "semi_major_axis"
	keyEccentricity    = "eccentricity"
	keyInclination     = "inclination"
	keyAscendingNode   = "ascending_node_longitude"
	keyPerihelionArg   = "perihelion_argument"
	keyEpochOsculation = "epoch_osculation"
	keyMeanAnomaly     = "mean_anomaly"
	keyMeanMotion      = "mean_motion"
)

// CSV column names. They match the Record JSON names.
const (
	ColumnID             = "id"
	ColumnName           = "name"
	ColumnHazardous      = "hazardous"
	ColumnA              = "a"
	ColumnE              = "e"
	ColumnI              = "i"
	ColumnOm             = "om"
	ColumnW              = "w"
	ColumnEpoch          = "epoch"
	ColumnMeanAnomalyDeg = "mean_anomaly_deg"
	ColumnM0             = "M0"
)

// Columns lists the CSV header in canonical order.
var Columns = []string{
	ColumnID, ColumnName, ColumnHazardous,
	ColumnA, ColumnE, ColumnI, ColumnOm, ColumnW,
	ColumnEpoch, ColumnMeanAnomalyDeg, ColumnM0,
}

// FromBrowseObject maps a NeoWs browse object to a Record.
// OrbitalData that is not a JSON object reads as empty, leaving every
// orbital field nil.
func FromBrowseObject(o BrowseObject) Record {
	orb, _ := o.OrbitalData.(map[string]any)
	return Record{
		ID:             text(o.ID),
		Name:           text(o.Name),
		Hazardous:      Truthy(o.Hazardous),
		A:              Float(orb[keySemiMajorAxis]),
		E:              Float(orb[keyEccentricity]),
		I:              Float(orb[keyInclination]),
		Om:             Float(orb[keyAscendingNode]),
		W:              Float(orb[keyPerihelionArg]),
		Epoch:          Float(orb[keyEpochOsculation]),
		MeanAnomalyDeg: Float(orb[keyMeanAnomaly]),
		M0:             Float(orb[keyMeanMotion]),
	}
}

// FromCSVRow maps a CSV row keyed by header name to a Record.
// Absent id/name columns become nil; present ones are kept verbatim.
func FromCSVRow(row map[string]string) Record {
	num := func(col string) *float64 {
		v, ok := row[col]
		if !ok {
			return nil
		}
		return parseFloat(v)
	}

	var rec Record
	if v, ok := row[ColumnID]; ok {
		rec.ID = strPtr(v)
	}
	if v, ok := row[ColumnName]; ok {
		rec.Name = strPtr(v)
	}
	rec.Hazardous = HazardToken(row[ColumnHazardous])
	rec.A = num(ColumnA)
	rec.E = num(ColumnE)
	rec.I = num(ColumnI)
	rec.Om = num(ColumnOm)
	rec.W = num(ColumnW)
	rec.Epoch = num(ColumnEpoch)
	rec.MeanAnomalyDeg = num(ColumnMeanAnomalyDeg)
	rec.M0 = num(ColumnM0)
	return rec
}
