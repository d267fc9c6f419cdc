package dataprocessing

import (
	"context"
	"log/slog"

	apperrors "github.com/Francelinojr/teste-gener/internal/errors"
	"github.com/Francelinojr/teste-gener/internal/geography"
	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

// InstitutionSource lists the institution metadata files that may describe a year
type InstitutionSource interface {
	InstitutionCandidates(year int) []string
}

// InstitutionIndex loads the per-year institution geography used to backfill
// course records that lack their own location
type InstitutionIndex struct {
	source InstitutionSource
	logger *slog.Logger
}

// NewInstitutionIndex creates an index over source
func NewInstitutionIndex(source InstitutionSource, logger *slog.Logger) *InstitutionIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &InstitutionIndex{
		source: source,
		logger: logger.With(slog.String("component", "institution_index")),
	}
}

// Load returns the institution geography for year keyed by institution id.
// The first candidate file that parses wins. With no usable candidate the
// lookup is empty, which is logged but is not an error.
func (x *InstitutionIndex) Load(ctx context.Context, year int) map[string]domain.InstitutionGeo {
	candidates := x.source.InstitutionCandidates(year)
	for _, path := range candidates {
		idx, err := loadInstitutionFile(ctx, path)
		if err != nil {
			x.logger.WarnContext(ctx, "institution file unusable",
				slog.Int("year", year),
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		x.logger.InfoContext(ctx, "institution index loaded",
			slog.Int("year", year),
			slog.String("path", path),
			slog.Int("institutions", len(idx)))
		return idx
	}

	x.logger.InfoContext(ctx, "no institution index for year",
		slog.Int("year", year),
		slog.Int("candidates", len(candidates)))
	return map[string]domain.InstitutionGeo{}
}

func loadInstitutionFile(ctx context.Context, path string) (map[string]domain.InstitutionGeo, error) {
	fr, err := ReadFrame(ctx, path, modernReadOptions)
	if err != nil {
		return nil, err
	}
	prov := ResolveColumns(fr.Header, InstitutionAliases)
	if !prov.Has(ConceptInstitution) {
		return nil, apperrors.NewSchemaMismatchError(string(ConceptInstitution))
	}
	plan := geography.NewPlan(fr.Header, geography.InstitutionColumns)
	ci := newColumnIndex(fr, prov)

	out := make(map[string]domain.InstitutionGeo, fr.Len())
	for i := range fr.Rows {
		id := NormalizeCode(ci.cell(fr, i, ConceptInstitution))
		if id == "" {
			continue
		}
		if _, seen := out[id]; seen {
			continue
		}
		geo := plan.Resolve(fr.Getter(i))
		out[id] = domain.InstitutionGeo{
			InstitutionID:    id,
			MunicipalityName: ci.cell(fr, i, ConceptMunicipalityName),
			MunicipalityCode: NormalizeCode(ci.cell(fr, i, ConceptMunicipalityCode)),
			State:            geo.State,
			Region:           geo.Region,
		}
	}
	return out, nil
}

// Backfill fills the location fields a course record is missing from its
// institution's entry. Fields the record already has are left alone.
func Backfill(rec *domain.EnrollmentRecord, idx map[string]domain.InstitutionGeo) {
	if rec.InstitutionID == "" || len(idx) == 0 {
		return
	}
	geo, ok := idx[rec.InstitutionID]
	if !ok {
		return
	}
	if rec.MunicipalityName == "" {
		rec.MunicipalityName = geo.MunicipalityName
	}
	if rec.MunicipalityCode == "" {
		rec.MunicipalityCode = geo.MunicipalityCode
	}
	if rec.State == "" {
		rec.State = geo.State
	}
	if !rec.Region.Known() && geo.Region.Known() {
		rec.Region = geo.Region
	}
}

// completeGeography derives a still-unknown region from whatever location
// the record picked up through joins
func completeGeography(rec *domain.EnrollmentRecord) {
	if rec.Region.Known() {
		return
	}
	if rec.State != "" {
		rec.Region = geography.RegionForState(rec.State)
	}
	if !rec.Region.Known() && rec.MunicipalityCode != "" {
		st, region := geography.FromMunicipalityCode(rec.MunicipalityCode)
		if region.Known() {
			rec.Region = region
			if rec.State == "" {
				rec.State = st
			}
		}
	}
	rec.Region = regionOrUnknown(rec.Region)
}

type legacyInstitution struct {
	category         domain.Count
	state            string
	municipalityCode string
	municipalityName string
}

type placeKey struct {
	state            string
	municipalityCode string
}

// LegacyInstitutions is the administrative-category lookup built from a
// legacy INSTITUICAO file.
//
// Records join by institution id when both sides carry one, otherwise by
// (state, municipality code). The fallback key is not unique: when several
// institutions share a municipality the first one in the file wins and the
// rest are counted in Collisions.
type LegacyInstitutions struct {
	byID       map[string]legacyInstitution
	byPlace    map[placeKey]legacyInstitution
	Collisions int
}

// LoadLegacyInstitutions reads a legacy institution file
func LoadLegacyInstitutions(ctx context.Context, path string) (*LegacyInstitutions, error) {
	fr, err := ReadFrame(ctx, path, legacyReadOptions)
	if err != nil {
		return nil, err
	}
	prov := ResolveColumns(fr.Header, LegacyInstitutionAliases)
	if !prov.Has(ConceptAdminCategory) {
		return nil, apperrors.NewSchemaMismatchError(string(ConceptAdminCategory))
	}
	ci := newColumnIndex(fr, prov)

	l := &LegacyInstitutions{byPlace: make(map[placeKey]legacyInstitution, fr.Len())}
	if prov.Has(ConceptInstitution) {
		l.byID = make(map[string]legacyInstitution, fr.Len())
	}

	for i := range fr.Rows {
		entry := legacyInstitution{
			category:         ci.count(fr, i, ConceptAdminCategory),
			state:            ci.cell(fr, i, ConceptState),
			municipalityCode: NormalizeCode(ci.cell(fr, i, ConceptMunicipalityCode)),
			municipalityName: ci.cell(fr, i, ConceptMunicipalityName),
		}
		if l.byID != nil {
			if id := NormalizeCode(ci.cell(fr, i, ConceptInstitution)); id != "" {
				if _, seen := l.byID[id]; !seen {
					l.byID[id] = entry
				}
			}
		}
		key := placeKey{state: entry.state, municipalityCode: entry.municipalityCode}
		if _, seen := l.byPlace[key]; seen {
			l.Collisions++
			continue
		}
		l.byPlace[key] = entry
	}
	return l, nil
}

// Len returns the number of distinct join keys
func (l *LegacyInstitutions) Len() int {
	if l.byID != nil {
		return len(l.byID)
	}
	return len(l.byPlace)
}

// Apply joins rec to its institution, setting the administrative category
// and filling missing location fields. It reports whether a match was found.
func (l *LegacyInstitutions) Apply(rec *domain.EnrollmentRecord) bool {
	var (
		entry legacyInstitution
		ok    bool
	)
	if l.byID != nil && rec.InstitutionID != "" {
		entry, ok = l.byID[rec.InstitutionID]
	} else {
		entry, ok = l.byPlace[placeKey{state: rec.State, municipalityCode: rec.MunicipalityCode}]
	}
	if !ok {
		return false
	}

	rec.AdminCategory = entry.category
	if rec.State == "" {
		rec.State = entry.state
	}
	if rec.MunicipalityCode == "" {
		rec.MunicipalityCode = entry.municipalityCode
	}
	if rec.MunicipalityName == "" {
		rec.MunicipalityName = entry.municipalityName
	}
	return true
}
