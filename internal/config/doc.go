// Package config loads the census pipeline configuration.
//
// # Configuration Sources
//
// Values are layered, later sources winning:
//
//	1. Built-in defaults (Default)
//	2. An optional YAML file: $CENSUS_CONFIG, config.yaml or configs/config.yaml
//	3. Environment variables prefixed CENSUS_
//
// # Environment Variables
//
// Nested fields join with underscores:
//
//	CENSUS_PIPELINE_YEARS=2015-2020
//	CENSUS_PIPELINE_REGIONS=Nordeste,Sudeste
//	CENSUS_PIPELINE_CHUNK_SIZE=200000
//	CENSUS_PATHS_DATA_DIR=/srv/censo/Dados
//	CENSUS_LOGGING_LEVEL=debug
//
// # Validation
//
// Load validates the merged result with go-playground/validator struct tags
// and reports every failing field at once.
package config
