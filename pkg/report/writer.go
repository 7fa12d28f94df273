// Package report serializes normalized records to delimited output files.
package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/brdata-dev/cnpj-enricher/pkg/qsa"
	"github.com/rs/zerolog"
)

// Column headers are part of the output contract; downstream spreadsheets
// key on these names.
var (
	qsaHeader = []string{"cnpj", "nome_qsa", "qualificacao_qsa"}

	detailedHeader = []string{
		"nome_empresa", "situacao", "cidade", "estado",
		"cnpj", "dono", "telefone_site", "telefone_receita",
	}
)

// WriteQSA writes the per-partner layout: one row per record, header first.
// Field values are written as-is; placeholder defaulting already happened
// during normalization.
func WriteQSA(path string, records []qsa.Record, logger zerolog.Logger) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{rec.CNPJ, rec.PartnerName, rec.PartnerRole})
	}

	if err := writeCSV(path, qsaHeader, rows); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to write QSA output")
		return err
	}

	logger.Info().Int("rows", len(rows)).Str("path", path).Msg("QSA output written")
	return nil
}

// WriteDetailed writes the one-row-per-company layout.
func WriteDetailed(path string, records []qsa.DetailedRecord, logger zerolog.Logger) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.CompanyName, rec.Situation, rec.City, rec.State,
			rec.CNPJ, rec.Owners, rec.SitePhone, rec.RegistryPhone,
		})
	}

	if err := writeCSV(path, detailedHeader, rows); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to write detailed output")
		return err
	}

	logger.Info().Int("rows", len(rows)).Str("path", path).Msg("Detailed output written")
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}
