package app

import (
	"github.com/vk/inventio/internal/contract"
	"github.com/vk/inventio/modules/aerialscrew"
	"github.com/vk/inventio/modules/ornithopter"
	"github.com/vk/inventio/modules/selfcart"
)

// coreFactories is the definitive discovery source-list: every analysis
// module compiled into the inventio binary, in a fixed order so discovery
// stays deterministic.
var coreFactories = []contract.Factory{
	selfcart.New,
	aerialscrew.New,
	ornithopter.New,
}
