package module

import "github.com/attunepartners/prefix-match/internal/platform/config"

// Options holds configuration for the match module.
type Options struct {
	PatternsPath    string
	StopwordsPath   string
	Matching        bool
	LCSS            bool
	RemoveStopwords bool
	AddressMode     bool
	Workers         int
}

// FromConfig extracts Options from the CORE_MATCH_* namespace.
func FromConfig(cfg config.Conf) Options {
	mc := cfg.Prefix("CORE_MATCH_")
	return Options{
		PatternsPath:    mc.MustString("PATTERNS"),
		StopwordsPath:   mc.MayString("STOPWORDS", ""),
		Matching:        mc.MayBool("MATCHING", true),
		LCSS:            mc.MayBool("LCSS", false),
		RemoveStopwords: mc.MayBool("REMOVE_STOPWORDS", false),
		AddressMode:     mc.MayBool("ADDRESS_MODE", false),
		Workers:         mc.MayInt("WORKERS", 0),
	}
}
