package cmd

import (
	"github.com/rs/zerolog"

	"github.com/tripline/server/internal/config"
	"github.com/tripline/server/internal/domain/datecontext"
	"github.com/tripline/server/internal/extract/hybrid"
	"github.com/tripline/server/internal/extract/regex"
	"github.com/tripline/server/internal/llm"
)

// newResolver assembles the extraction cascade from configuration. The zone is
// fixed here and never changes for the life of the process.
func newResolver(cfg config.Config, logger zerolog.Logger) *datecontext.Resolver {
	primary := hybrid.New(llm.New(cfg.LLM), hybrid.Config{
		RuleConfidence: cfg.LLM.RuleConfidence,
		Timeout:        cfg.LLM.Timeout,
	}, nil)

	if !cfg.LLM.Enabled() {
		logger.Warn().Msg("ANTHROPIC_API_KEY not set; ambiguous messages go straight to the fallback extractor")
	}

	return datecontext.NewResolver(
		primary,
		regex.New(nil),
		datecontext.NewDateValidator(nil),
		datecontext.WithTimezone(cfg.DateContext.Timezone),
		datecontext.WithSink(datecontext.NewZerologSink(logger)),
	)
}
