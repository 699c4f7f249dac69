package orbit

// Earth returns the fixed J2000 orbital elements of Earth.
func Earth() Record {
	return Record{
		ID:             strPtr("earth"),
		Name:           strPtr("Earth"),
		Hazardous:      false,
		A:              floatPtr(1.00000011),
		E:              floatPtr(0.01671022),
		I:              floatPtr(0.00005),
		Om:             floatPtr(-11.26064),
		W:              floatPtr(102.94719),
		Epoch:          floatPtr(2451545.0),
		MeanAnomalyDeg: floatPtr(100.46435),
		M0:             floatPtr(0.9856076686),
	}
}

type seedBody struct {
	name                      string
	a, e, i, om, w, m0, epoch float64
}

var seedBodies = []seedBody{
	{"433 Eros", 1.458, 0.2228, 10.83, 304.27, 178.93, 310.55, 2461000.5},
	{"719 Albert", 2.637, 0.5466, 11.57, 183.86, 156.19, 240.61, 2461000.5},
	{"887 Alinda", 2.474, 0.5712, 9.40, 110.41, 350.53, 81.54, 2461000.5},
	{"1036 Ganymed", 2.665, 0.5332, 26.68, 215.44, 132.50, 97.59, 2461000.5},
}

// SeedRecords returns a fresh copy of the static seed list. Seed bodies have
// no upstream id and no mean anomaly.
func SeedRecords() []Record {
	out := make([]Record, 0, len(seedBodies))
	for _, b := range seedBodies {
		out = append(out, Record{
			Name:  strPtr(b.name),
			A:     floatPtr(b.a),
			E:     floatPtr(b.e),
			I:     floatPtr(b.i),
			Om:    floatPtr(b.om),
			W:     floatPtr(b.w),
			Epoch: floatPtr(b.epoch),
			M0:    floatPtr(b.m0),
		})
	}
	return out
}
