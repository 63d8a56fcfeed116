package routertool

import (
	"errors"

	"github.com/flexigpt/llmtools-go"

	"github.com/flexigpt/skillrouter-go/spec"
)

// NewRouterRegistry creates an llmtools-go Registry and registers ONLY
// the router tools into it.
func NewRouterRegistry(
	rt spec.Router,
	conversationID spec.ConversationID,
	opts ...llmtools.RegistryOption,
) (*llmtools.Registry, error) {
	if rt == nil {
		return nil, errors.New("nil router")
	}
	r, err := llmtools.NewRegistry(opts...)
	if err != nil {
		return nil, err
	}
	if err := Register(r, rt, conversationID); err != nil {
		return nil, err
	}
	return r, nil
}
