package app

import (
	"github.com/vk/vigilgo/internal/registry"
	"github.com/vk/vigilgo/modules/httppoll"
	"github.com/vk/vigilgo/modules/report"
	"github.com/vk/vigilgo/modules/sleep"
	"github.com/vk/vigilgo/modules/socketio"
	"github.com/vk/vigilgo/modules/ticker"
	"github.com/vk/vigilgo/modules/webhook"
)

// coreModules is the default runner set available to scenarios when the
// caller does not inject its own.
var coreModules = []registry.Module{
	&sleep.Module{},
	&ticker.Module{},
	&httppoll.Module{},
	&socketio.Module{},
	&report.Module{},
	&webhook.Module{},
}
