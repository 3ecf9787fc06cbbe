package scoring

import "errors"

var (
	ErrStarOutOfRange     = errors.New("star rating must be between 1 and 5")
	ErrStarMappingMissing = errors.New("star rating has no mapped score")
	ErrScoreOutOfRange    = errors.New("score must be between 0 and 100")
	ErrWeightOutOfRange   = errors.New("weight out of range")
	ErrWeightSum          = errors.New("weights must sum to 100%")
	ErrUnknownMode        = errors.New("unknown scoring mode")
	ErrMissingWeights     = errors.New("weight configuration missing for scoring mode")
	ErrBossScoreRequired  = errors.New("boss score required by weight configuration")
)
