package spec

import "errors"

var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrSkillNotFound        = errors.New("skill not found")
	ErrCatalogUnavailable   = errors.New("catalog unavailable")
	ErrConversationRequired = errors.New("conversation id required")
	ErrScorerUnavailable    = errors.New("scorer unavailable")
)
