package cnpj

import (
	"bufio"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// LoadFile reads candidate CNPJs from path, one per line, and returns them
// normalized in input order. Duplicates are preserved. Blank lines and lines
// without a single digit are skipped.
//
// A missing or unreadable file is logged and yields an empty slice; the caller
// treats that as "nothing to process" rather than a fatal error.
func LoadFile(path string, logger zerolog.Logger) []string {
	f, err := os.Open(path)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Cannot read CNPJ input file")
		return nil
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.ContainsAny(line, "0123456789") {
			logger.Warn().Str("line", line).Msg("Skipping line without digits")
			continue
		}
		ids = append(ids, Normalize(line))
	}

	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Error while reading CNPJ input file")
		return nil
	}

	logger.Info().Int("count", len(ids)).Str("path", path).Msg("CNPJs loaded")
	return ids
}
