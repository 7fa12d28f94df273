// Package qsa normalizes registry payloads into flat output records.
//
// QSA (Quadro de Sócios e Administradores) is the partner/ownership list
// attached to a registered company. Normalization guarantees that every
// looked-up CNPJ yields at least one record: one per partner when the QSA is
// present, a single placeholder-bearing record otherwise.
package qsa

import (
	"strings"

	"github.com/brdata-dev/cnpj-enricher/pkg/client"
)

// Placeholder is the sentinel written for any field that could not be
// determined.
const Placeholder = "N/A"

// Record is one flat output row: the identifier, the company-level fields,
// and one partner. Fields that could not be determined hold Placeholder.
type Record struct {
	CNPJ          string
	CompanyName   string
	Situation     string
	City          string
	State         string
	RegistryPhone string
	PartnerName   string
	PartnerRole   string
}

// Normalize maps an optional payload to output records, first matching rule
// wins:
//
//  1. absent or ERROR payload: one record, every extractable field Placeholder
//  2. empty QSA: one record with company fields, partner fields Placeholder
//  3. N partners: N records in payload order
//
// Blank or whitespace-only values are individually replaced by Placeholder.
func Normalize(cnpj string, company *client.Company) []Record {
	if company.IsError() {
		return []Record{placeholderRecord(cnpj)}
	}

	base := Record{
		CNPJ:          cnpj,
		CompanyName:   orPlaceholder(company.Name),
		Situation:     orPlaceholder(company.Situation),
		City:          orPlaceholder(company.City),
		State:         orPlaceholder(company.State),
		RegistryPhone: orPlaceholder(company.Phone),
		PartnerName:   Placeholder,
		PartnerRole:   Placeholder,
	}

	if len(company.Partners) == 0 {
		return []Record{base}
	}

	records := make([]Record, 0, len(company.Partners))
	for _, partner := range company.Partners {
		rec := base
		rec.PartnerName = orPlaceholder(partner.Name)
		rec.PartnerRole = orPlaceholder(partner.Qualification)
		records = append(records, rec)
	}
	return records
}

// Owners joins the partner names of a company's records with "/" for the
// single-row detailed layout.
func Owners(records []Record) string {
	names := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.PartnerName)
	}
	return strings.Join(names, "/")
}

func placeholderRecord(cnpj string) Record {
	return Record{
		CNPJ:          cnpj,
		CompanyName:   Placeholder,
		Situation:     Placeholder,
		City:          Placeholder,
		State:         Placeholder,
		RegistryPhone: Placeholder,
		PartnerName:   Placeholder,
		PartnerRole:   Placeholder,
	}
}

func orPlaceholder(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Placeholder
	}
	return s
}
