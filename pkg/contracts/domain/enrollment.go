package domain

// Region is one of the five macro-regions, or RegionUnknown when resolution failed
type Region string

const (
	RegionNorte       Region = "Norte"
	RegionNordeste    Region = "Nordeste"
	RegionSudeste     Region = "Sudeste"
	RegionSul         Region = "Sul"
	RegionCentroOeste Region = "Centro-Oeste"

	// RegionUnknown marks rows whose region could not be resolved. They are
	// kept through mapping and only removed by the region-of-interest filter.
	RegionUnknown Region = "UNKNOWN"
)

// Regions lists the resolvable regions in their conventional order
func Regions() []Region {
	return []Region{RegionNorte, RegionNordeste, RegionSudeste, RegionSul, RegionCentroOeste}
}

// DefaultRegions is the region-of-interest selection used when none is configured
func DefaultRegions() []Region {
	return []Region{RegionNordeste, RegionSudeste}
}

// Abbreviation returns the two-letter tag used in output file suffixes
func (r Region) Abbreviation() string {
	switch r {
	case RegionNorte:
		return "NO"
	case RegionNordeste:
		return "NE"
	case RegionSudeste:
		return "SE"
	case RegionSul:
		return "SU"
	case RegionCentroOeste:
		return "CO"
	default:
		return string(r)
	}
}

// Known reports whether r is one of the five regions
func (r Region) Known() bool {
	for _, k := range Regions() {
		if r == k {
			return true
		}
	}
	return false
}

// InstitutionType is the public/private label derived from the administrative category
type InstitutionType string

const (
	InstitutionPublic  InstitutionType = "public"
	InstitutionPrivate InstitutionType = "private"
)

// Source identifies which loader produced a year's canonical records
type Source string

const (
	SourceModern Source = "modern"
	SourceLegacy Source = "legacy"
	SourceNone   Source = "none"
)

// EnrollmentRecord is one row of the canonical enrollment table.
//
// Male enrollment is never stored: it is always Total - Female (see Male).
// InTarget, TargetGroup and InstitutionType are labels added after the
// table is built; every other field is fixed once the record is mapped.
type EnrollmentRecord struct {
	Year             int    `json:"year"`
	Region           Region `json:"region"`
	State            string `json:"state"`
	MunicipalityName string `json:"municipality_name"`
	MunicipalityCode string `json:"municipality_code"`
	AdminCategory    Count  `json:"administrative_category_code"`
	AreaName         string `json:"area_name"`
	AreaCode         string `json:"area_code,omitempty"`
	InstitutionID    string `json:"institution_id"`

	Total     Count `json:"total_enrolled"`
	Female    Count `json:"female_enrolled"`
	Entrants  Count `json:"entrants"`
	Graduates Count `json:"graduates"`

	InTarget        bool            `json:"in_target"`
	TargetGroup     string          `json:"target_group,omitempty"`
	InstitutionType InstitutionType `json:"institution_type,omitempty"`
}

// Male returns the derived male enrollment
func (r EnrollmentRecord) Male() Count {
	return r.Total.Sub(r.Female)
}

// GrainKey identifies the canonical grain a record belongs to
type GrainKey struct {
	Year             int
	Region           Region
	State            string
	MunicipalityName string
	MunicipalityCode string
	AdminCategory    Count
	AreaName         string
	AreaCode         string
	InstitutionID    string
}

// Grain returns the record's canonical grain key
func (r EnrollmentRecord) Grain() GrainKey {
	return GrainKey{
		Year:             r.Year,
		Region:           r.Region,
		State:            r.State,
		MunicipalityName: r.MunicipalityName,
		MunicipalityCode: r.MunicipalityCode,
		AdminCategory:    r.AdminCategory,
		AreaName:         r.AreaName,
		AreaCode:         r.AreaCode,
		InstitutionID:    r.InstitutionID,
	}
}

// Merge adds the counts of o into r. Both records must share a grain.
func (r EnrollmentRecord) Merge(o EnrollmentRecord) EnrollmentRecord {
	r.Total = r.Total.Add(o.Total)
	r.Female = r.Female.Add(o.Female)
	r.Entrants = r.Entrants.Add(o.Entrants)
	r.Graduates = r.Graduates.Add(o.Graduates)
	return r
}

// InstitutionGeo is one row of a year's institution geography index
type InstitutionGeo struct {
	InstitutionID    string `json:"institution_id"`
	MunicipalityName string `json:"municipality_name"`
	MunicipalityCode string `json:"municipality_code"`
	State            string `json:"state"`
	Region           Region `json:"region"`
}
