package storetest

import (
	fab "github.com/Goldziher/fabricator"

	"github.com/Makepad-fr/tada/internal/model"
)

// NewItem builds an item with generated fields; customData overrides them
// by field name, e.g. map[string]any{"Status": model.StatusOpen}.
func NewItem(customData ...map[string]any) model.Item {
	instance := fab.New(model.Item{})

	if len(customData) > 0 {
		return instance.Build(customData...)
	}

	return instance.Build()
}
