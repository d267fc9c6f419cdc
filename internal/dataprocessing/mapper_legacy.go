package dataprocessing

import (
	"github.com/Francelinojr/teste-gener/internal/geography"
	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

// MapLegacy maps a batch of a legacy graduation file onto canonical records.
//
// Legacy years report enrollment split by gender and study shift. Each
// gender total is the sum of its present shift columns; a gender with no
// shift column at all is missing, and so is the total derived from it.
// Administrative category and municipality names are not in these files
// and are joined later from the legacy institution file.
func MapLegacy(fr *Frame, year int) ([]domain.EnrollmentRecord, Provenance) {
	prov := ResolveColumns(fr.Header, LegacyAliases)
	prov.Geography = geography.NewPlan(fr.Header, legacyGeography)
	ci := newColumnIndex(fr, prov)

	hasFemale := prov.Has(ConceptFemaleDay) || prov.Has(ConceptFemaleNight)
	hasMale := prov.Has(ConceptMaleDay) || prov.Has(ConceptMaleNight)

	out := make([]domain.EnrollmentRecord, 0, fr.Len())
	for i := range fr.Rows {
		geo := prov.Geography.Resolve(fr.Getter(i))

		female, male := domain.Missing, domain.Missing
		if hasFemale {
			female = shiftSum(ci.count(fr, i, ConceptFemaleDay), ci.count(fr, i, ConceptFemaleNight))
		}
		if hasMale {
			male = shiftSum(ci.count(fr, i, ConceptMaleDay), ci.count(fr, i, ConceptMaleNight))
		}

		state := geo.State
		if state == "" {
			state = ci.cell(fr, i, ConceptState)
		}

		out = append(out, domain.EnrollmentRecord{
			Year:             year,
			Region:           regionOrUnknown(geo.Region),
			State:            state,
			MunicipalityCode: NormalizeCode(ci.cell(fr, i, ConceptMunicipalityCode)),
			AdminCategory:    domain.Missing,
			AreaName:         ci.cell(fr, i, ConceptAreaName),
			InstitutionID:    NormalizeCode(ci.cell(fr, i, ConceptInstitution)),
			Total:            legacyTotal(female, male),
			Female:           female,
			Entrants:         domain.Missing,
			Graduates:        domain.Missing,
		})
	}
	return out, prov
}

// shiftSum adds the day and night cells of a gender whose shift columns
// exist. Blank or unparseable cells contribute nothing.
func shiftSum(day, night domain.Count) domain.Count {
	return domain.CountOf(0).Add(day).Add(night)
}

func legacyTotal(female, male domain.Count) domain.Count {
	if !female.Valid || !male.Valid {
		return domain.Missing
	}
	return domain.CountOf(female.Value + male.Value)
}
