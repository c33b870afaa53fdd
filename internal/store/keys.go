package store

import (
	"strings"

	"github.com/monomori/monomori-server/internal/domain"
)

// Badger keys are "<namespace>:<name>". View preferences use one key per
// category, e.g. "view_preferences:view_mode_BOOKS".
const (
	viewPreferencesNamespace = "view_preferences"
	viewModePrefix           = viewPreferencesNamespace + ":view_mode_"
)

func viewModeKey(category domain.Category) []byte {
	return []byte(viewModePrefix + string(category))
}

// categoryFromViewModeKey is the inverse of viewModeKey.
func categoryFromViewModeKey(key []byte) (domain.Category, bool) {
	name, ok := strings.CutPrefix(string(key), viewModePrefix)
	if !ok {
		return domain.CategoryUnknown, false
	}
	category := domain.Category(name)
	return category, category.Valid()
}
