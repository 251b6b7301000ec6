package coupon

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"

	"fixit-store/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for gzipped seed files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based seed loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "coupon-seed-loader").Logger(),
	}
}

// Load reads a gzipped seed file and returns the coupons it defines.
func (l *fileLoader) Load(ctx context.Context, path string) ([]model.Coupon, error) {
	l.logger.Info().Str("file", path).Msg("loading coupon seed file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open seed file")
		return nil, fmt.Errorf("failed to open seed file %s: %w", path, err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to create gzip reader")
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", path, err)
	}
	defer gzipReader.Close()

	coupons, err := parseSeed(gzipReader)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to parse seed file")
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("coupon_count", len(coupons)).
		Msg("coupon seed file loaded")

	return coupons, nil
}
