package app

import (
	"github.com/vk/lumengo/internal/comp"
	"github.com/vk/lumengo/modules/accel"
	"github.com/vk/lumengo/modules/assets"
	"github.com/vk/lumengo/modules/camera"
	"github.com/vk/lumengo/modules/film"
	"github.com/vk/lumengo/modules/material"
	"github.com/vk/lumengo/modules/mesh"
	"github.com/vk/lumengo/modules/renderer"
	"github.com/vk/lumengo/modules/scene"
	"github.com/vk/lumengo/modules/volume"
)

// coreModules lists every statically linked component module. Plugin
// modules register through the same interface; linking one in and adding
// it to the App's module list is the whole loading story the core assumes.
var coreModules = []comp.Module{
	&assets.Module{},
	&scene.Module{},
	&film.Module{},
	&camera.Module{},
	&material.Module{},
	&mesh.Module{},
	&volume.Module{},
	&accel.Module{},
	&renderer.Module{},
}
