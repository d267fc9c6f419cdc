package geography

import "github.com/Francelinojr/teste-gener/pkg/contracts/domain"

// RegionByState maps each federative unit abbreviation to its region
var RegionByState = map[string]domain.Region{
	"AC": domain.RegionNorte, "AP": domain.RegionNorte, "AM": domain.RegionNorte, "PA": domain.RegionNorte,
	"RO": domain.RegionNorte, "RR": domain.RegionNorte, "TO": domain.RegionNorte,

	"AL": domain.RegionNordeste, "BA": domain.RegionNordeste, "CE": domain.RegionNordeste,
	"MA": domain.RegionNordeste, "PB": domain.RegionNordeste, "PE": domain.RegionNordeste,
	"PI": domain.RegionNordeste, "RN": domain.RegionNordeste, "SE": domain.RegionNordeste,

	"ES": domain.RegionSudeste, "MG": domain.RegionSudeste, "RJ": domain.RegionSudeste, "SP": domain.RegionSudeste,

	"PR": domain.RegionSul, "RS": domain.RegionSul, "SC": domain.RegionSul,

	"DF": domain.RegionCentroOeste, "GO": domain.RegionCentroOeste,
	"MS": domain.RegionCentroOeste, "MT": domain.RegionCentroOeste,
}

// StateByCode maps the numeric IBGE state code to the state abbreviation
var StateByCode = map[int]string{
	11: "RO", 12: "AC", 13: "AM", 14: "RR", 15: "PA", 16: "AP", 17: "TO",
	21: "MA", 22: "PI", 23: "CE", 24: "RN", 25: "PB", 26: "PE", 27: "AL", 28: "SE", 29: "BA",
	31: "MG", 32: "ES", 33: "RJ", 35: "SP",
	41: "PR", 42: "SC", 43: "RS",
	50: "MS", 51: "MT", 52: "GO", 53: "DF",
}

// RegionByCode maps the numeric IBGE state code to its region
var RegionByCode = map[int]domain.Region{
	11: domain.RegionNorte, 12: domain.RegionNorte, 13: domain.RegionNorte, 14: domain.RegionNorte,
	15: domain.RegionNorte, 16: domain.RegionNorte, 17: domain.RegionNorte,

	21: domain.RegionNordeste, 22: domain.RegionNordeste, 23: domain.RegionNordeste,
	24: domain.RegionNordeste, 25: domain.RegionNordeste, 26: domain.RegionNordeste,
	27: domain.RegionNordeste, 28: domain.RegionNordeste, 29: domain.RegionNordeste,

	31: domain.RegionSudeste, 32: domain.RegionSudeste, 33: domain.RegionSudeste, 35: domain.RegionSudeste,

	41: domain.RegionSul, 42: domain.RegionSul, 43: domain.RegionSul,

	50: domain.RegionCentroOeste, 51: domain.RegionCentroOeste,
	52: domain.RegionCentroOeste, 53: domain.RegionCentroOeste,
}
