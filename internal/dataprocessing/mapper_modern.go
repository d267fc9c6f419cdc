package dataprocessing

import (
	"github.com/Francelinojr/teste-gener/internal/classify"
	"github.com/Francelinojr/teste-gener/internal/geography"
	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

// MapModern maps a batch of the unified course extract onto canonical
// records. Every row yields a record: unresolved geography becomes
// domain.RegionUnknown and unparseable counts become missing.
func MapModern(fr *Frame, year int) ([]domain.EnrollmentRecord, Provenance) {
	prov := ResolveColumns(fr.Header, ModernAliases)
	prov.Geography = geography.NewPlan(fr.Header, geography.CourseColumns)
	ci := newColumnIndex(fr, prov)

	out := make([]domain.EnrollmentRecord, 0, fr.Len())
	for i := range fr.Rows {
		geo := prov.Geography.Resolve(fr.Getter(i))
		out = append(out, domain.EnrollmentRecord{
			Year:             year,
			Region:           regionOrUnknown(geo.Region),
			State:            geo.State,
			MunicipalityName: ci.cell(fr, i, ConceptMunicipalityName),
			MunicipalityCode: NormalizeCode(ci.cell(fr, i, ConceptMunicipalityCode)),
			AdminCategory:    ci.count(fr, i, ConceptAdminCategory),
			AreaName:         ci.cell(fr, i, ConceptAreaName),
			AreaCode:         classify.PadCode(ci.cell(fr, i, ConceptAreaCode)),
			InstitutionID:    NormalizeCode(ci.cell(fr, i, ConceptInstitution)),
			Total:            ci.count(fr, i, ConceptTotal),
			Female:           ci.count(fr, i, ConceptFemale),
			Entrants:         ci.count(fr, i, ConceptEntrants),
			Graduates:        ci.count(fr, i, ConceptGraduates),
		})
	}
	return out, prov
}
