package dataprocessing

import (
	"sort"

	"github.com/Francelinojr/teste-gener/internal/geography"
)

// Concept is a canonical field a source column can resolve to
type Concept string

const (
	ConceptRegion           Concept = "region"
	ConceptState            Concept = "state"
	ConceptMunicipalityName Concept = "municipality_name"
	ConceptMunicipalityCode Concept = "municipality_code"
	ConceptAdminCategory    Concept = "administrative_category"
	ConceptAreaName         Concept = "area_name"
	ConceptAreaCode         Concept = "area_code"
	ConceptInstitution      Concept = "institution_id"
	ConceptTotal            Concept = "total_enrolled"
	ConceptFemale           Concept = "female_enrolled"
	ConceptEntrants         Concept = "entrants"
	ConceptGraduates        Concept = "graduates"
	ConceptFemaleDay        Concept = "female_day"
	ConceptMaleDay          Concept = "male_day"
	ConceptFemaleNight      Concept = "female_night"
	ConceptMaleNight        Concept = "male_night"
)

// Aliases maps each concept to its accepted headers, in probe order
type Aliases map[Concept][]string

// ModernAliases are the columns of the unified course extract
var ModernAliases = Aliases{
	ConceptRegion:           {"NO_REGIAO"},
	ConceptState:            {"SG_UF"},
	ConceptMunicipalityName: {"NO_MUNICIPIO"},
	ConceptMunicipalityCode: {"CO_MUNICIPIO"},
	ConceptAdminCategory:    {"TP_CATEGORIA_ADMINISTRATIVA"},
	ConceptAreaName:         {"NO_CINE_AREA_GERAL", "NO_OCDE_AREA_GERAL"},
	ConceptAreaCode:         {"CO_CINE_AREA_GERAL"},
	ConceptInstitution:      {"CO_IES"},
	ConceptTotal:            {"QT_MAT"},
	ConceptFemale:           {"QT_MAT_FEM"},
	ConceptEntrants:         {"QT_ING"},
	ConceptGraduates:        {"QT_CONC"},
}

// LegacyAliases are the historical names used by per-year graduation files
var LegacyAliases = Aliases{
	ConceptRegion:           {"NO_REGIAO"},
	ConceptState:            {"SG_UF_CURSO", "SG_UF"},
	ConceptMunicipalityCode: {"CODMUNIC", "CO_MUNICIPIO", "CO_MUNICIPIO_CURSO"},
	ConceptAreaName:         {"NO_AREA_CONHE", "AREACURSO", "NO_OCDE_AREA_GERAL", "NO_CINE_AREA_GERAL"},
	ConceptInstitution:      {"CO_IES", "CODIGO_IES", "CO_IES_CURSO", "MASCARA", "ID_IES", "CODIGO_INSTITUICAO"},
	ConceptFemaleDay:        {"QT_MAT_ATU_DIU_FEMI", "QT_MAT_ATU_DIURNO_FEMI"},
	ConceptMaleDay:          {"QT_MAT_ATU_DIU_MASC", "QT_MAT_ATU_DIURNO_MASC"},
	ConceptFemaleNight:      {"QT_MAT_ATU_NOT_FEMI", "QT_MAT_ATU_NOTURNO_FEMI"},
	ConceptMaleNight:        {"QT_MAT_ATU_NOT_MASC", "QT_MAT_ATU_NOTURNO_MASC"},
}

// LegacyInstitutionAliases are the columns of the legacy INSTITUICAO file
var LegacyInstitutionAliases = Aliases{
	ConceptAdminCategory:    {"IN_DEP_ADM", "TP_CATEGORIA_ADMINISTRATIVA"},
	ConceptInstitution:      {"CO_IES", "CODIGO_IES", "MASCARA", "ID_IES", "CODIGO_INSTITUICAO"},
	ConceptState:            {"SG_UF"},
	ConceptMunicipalityCode: {"CODMUNIC", "CO_MUNICIPIO"},
	ConceptMunicipalityName: {"NO_MUNICIPIO"},
}

// InstitutionAliases are the columns of the per-year institution metadata file
var InstitutionAliases = Aliases{
	ConceptInstitution:      {"CO_IES"},
	ConceptMunicipalityName: {"NO_MUNICIPIO_IES", "NO_MUNICIPIO"},
	ConceptMunicipalityCode: {"CO_MUNICIPIO_IES", "CO_MUNICIPIO"},
}

// legacyGeography probes legacy course files for region inputs
var legacyGeography = geography.Columns{
	Region:           LegacyAliases[ConceptRegion],
	State:            LegacyAliases[ConceptState],
	StateCode:        []string{"CO_UF_CURSO", "CO_UF"},
	MunicipalityCode: LegacyAliases[ConceptMunicipalityCode],
}

// Provenance records which header resolved each concept of a batch, and
// which geography rule produced its regions. Concepts absent from the
// batch are listed in Missing and are never defaulted.
type Provenance struct {
	Columns   map[Concept]string `json:"columns"`
	Missing   []Concept          `json:"missing,omitempty"`
	Geography geography.Plan     `json:"geography"`
}

// ResolveColumns probes header for every concept in aliases
func ResolveColumns(header []string, aliases Aliases) Provenance {
	p := Provenance{Columns: make(map[Concept]string, len(aliases))}
	for concept, names := range aliases {
		if col := geography.Lookup(header, names...); col != "" {
			p.Columns[concept] = col
		} else {
			p.Missing = append(p.Missing, concept)
		}
	}
	sort.Slice(p.Missing, func(i, j int) bool { return p.Missing[i] < p.Missing[j] })
	return p
}

// Column returns the resolved header for c, or ""
func (p Provenance) Column(c Concept) string {
	return p.Columns[c]
}

// Has reports whether c resolved to a column
func (p Provenance) Has(c Concept) bool {
	return p.Columns[c] != ""
}
