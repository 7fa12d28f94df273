package qsa

// DetailedRecord is the single-row-per-company layout: company-level fields,
// all partner names collapsed into one owners field, plus the two phone
// sources (registry and best-effort site lookup).
type DetailedRecord struct {
	CompanyName   string
	Situation     string
	City          string
	State         string
	CNPJ          string
	Owners        string
	SitePhone     string
	RegistryPhone string
}

// Collapse folds the per-partner records of one CNPJ into a DetailedRecord.
// The records must come from a single Normalize call (same CNPJ, shared
// company fields).
func Collapse(records []Record, sitePhone string) DetailedRecord {
	if len(records) == 0 {
		// Normalize never returns an empty slice; guard anyway.
		return DetailedRecord{
			CompanyName:   Placeholder,
			Situation:     Placeholder,
			City:          Placeholder,
			State:         Placeholder,
			Owners:        Placeholder,
			SitePhone:     orPlaceholder(sitePhone),
			RegistryPhone: Placeholder,
		}
	}

	first := records[0]
	return DetailedRecord{
		CompanyName:   first.CompanyName,
		Situation:     first.Situation,
		City:          first.City,
		State:         first.State,
		CNPJ:          first.CNPJ,
		Owners:        Owners(records),
		SitePhone:     orPlaceholder(sitePhone),
		RegistryPhone: first.RegistryPhone,
	}
}
