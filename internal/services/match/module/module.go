// Package module assembles the match service from configuration: it
// loads the pattern catalog, seals it, and wires the service with its
// optional collaborators.
package module

import (
	"github.com/attunepartners/prefix-match/internal/core/catalog"
	"github.com/attunepartners/prefix-match/internal/core/matcher"
	"github.com/attunepartners/prefix-match/internal/input"
	"github.com/attunepartners/prefix-match/internal/platform/logger"
	"github.com/attunepartners/prefix-match/internal/services/match/service"

	perr "github.com/attunepartners/prefix-match/internal/platform/errors"
)

// BuildCatalog loads stopwords and patterns from the configured files
// and returns the sealed catalog. Pattern files may be gzip-compressed.
func BuildCatalog(opts Options, log *logger.Logger) (*catalog.Catalog, error) {
	if opts.PatternsPath == "" {
		return nil, perr.InvalidArgf("pattern file is required")
	}
	if log == nil {
		log = logger.Named("catalog")
	}

	b := catalog.NewBuilder(catalog.Options{
		RemoveStopwords: opts.RemoveStopwords,
		AddressMode:     opts.AddressMode,
	}, log)

	if opts.StopwordsPath != "" {
		sr, err := input.OpenReader(opts.StopwordsPath)
		if err != nil {
			return nil, err
		}
		_, err = b.ReadStopwords(sr)
		cerr := sr.Close()
		if err != nil {
			return nil, err
		}
		if cerr != nil {
			return nil, perr.Wrapf(cerr, perr.ErrorCodeUnavailable, "closing %s", opts.StopwordsPath)
		}
	}

	pr, err := input.OpenReader(opts.PatternsPath)
	if err != nil {
		return nil, err
	}
	_, err = b.ReadPatterns(pr, opts.PatternsPath)
	cerr := pr.Close()
	if err != nil {
		return nil, err
	}
	if cerr != nil {
		return nil, perr.Wrapf(cerr, perr.ErrorCodeUnavailable, "closing %s", opts.PatternsPath)
	}

	c := b.Seal()
	log.Info().Str("stats", c.Stats().String()).Msg("catalog sealed")
	return c, nil
}

// New builds the full match service from options.
func New(opts Options, svcOpts ...service.Option) (*service.Service, error) {
	cat, err := BuildCatalog(opts, logger.Named("match"))
	if err != nil {
		return nil, err
	}
	return service.New(cat, service.Config{
		Flags:   matcher.Flags{Matching: opts.Matching, LCSS: opts.LCSS},
		Workers: opts.Workers,
	}, svcOpts...), nil
}
