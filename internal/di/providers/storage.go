package providers

import (
	"github.com/samber/do/v2"

	"github.com/monomori/monomori-server/internal/config"
	"github.com/monomori/monomori-server/internal/media/images"
)

// ProvideCoverStorage opens the cover cache under the data directory.
func ProvideCoverStorage(i do.Injector) (*images.Storage, error) {
	return images.NewStorage(do.MustInvoke[*config.Config](i).CoversPath())
}
