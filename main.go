/*
The viewer opens the asset library from crpg.toml, preloads every
indexed static mesh, and keeps a window alive while reacting to packed
files changing on disk. Device setup and drawing live elsewhere; this
is the harness the asset layer is developed against.
*/
package main

import (
	"os"

	"github.com/spaghettifunk/crpg/engine/assets"
	"github.com/spaghettifunk/crpg/engine/config"
	"github.com/spaghettifunk/crpg/engine/core"
	"github.com/spaghettifunk/crpg/engine/platform"
	"github.com/spaghettifunk/crpg/engine/renderer"
)

const configPath = "crpg.toml"

func main() {
	cfg := config.Default()
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			core.LogFatal("cannot load '%s': %s", configPath, err.Error())
		}
	}
	core.SetLogLevel(cfg.LogLevel)

	library, err := assets.OpenLibrary(cfg.Assets.LibraryPath)
	if err != nil {
		core.LogFatal("cannot open asset library: %s", err.Error())
	}
	defer library.Close()

	// Preload everything the index knows about; an unreadable mesh here
	// means a broken asset build.
	var meshIDs []assets.MeshID
	for _, ref := range library.References() {
		if ref.Type == assets.AssetTypeStaticMesh {
			meshIDs = append(meshIDs, ref.AssetID)
		}
	}
	payloads, err := library.ReadMeshes(meshIDs)
	if err != nil {
		core.LogFatal("failed to preload meshes: %s", err.Error())
	}
	for i := range payloads {
		p := &payloads[i]
		core.LogInfo("mesh %d: %d vertices, %d indices, bounds min(%g, %g, %g) max(%g, %g, %g)",
			p.Mesh.ID, len(p.Vertices), len(p.Indices),
			p.Mesh.Bounds.Min.X, p.Mesh.Bounds.Min.Y, p.Mesh.Bounds.Min.Z,
			p.Mesh.Bounds.Max.X, p.Mesh.Bounds.Max.Y, p.Mesh.Bounds.Max.Z)
	}

	inputDesc := renderer.StaticVertexInputDescription()
	core.LogDebug("static vertex layout: stride %d, %d attributes",
		inputDesc.Bindings[0].Stride, len(inputDesc.Attributes))

	var watcher *assets.Watcher
	if len(cfg.Assets.WatchDirs) > 0 {
		watcher, err = assets.NewWatcher()
		if err != nil {
			core.LogFatal("cannot start asset watcher: %s", err.Error())
		}
		defer watcher.Close()
		for _, dir := range cfg.Assets.WatchDirs {
			if err := watcher.WatchRecursive(dir); err != nil {
				core.LogFatal("cannot watch '%s': %s", dir, err.Error())
			}
		}
	}

	p, err := platform.New()
	if err != nil {
		core.LogFatal("cannot create platform: %s", err.Error())
	}
	if err := p.Startup(cfg.Window.Title, cfg.Window.X, cfg.Window.Y, cfg.Window.Width, cfg.Window.Height); err != nil {
		core.LogFatal("cannot start platform: %s", err.Error())
	}
	defer p.Shutdown()

	for !p.ShouldClose() {
		p.PumpMessages()

		if watcher != nil {
			// Handle invalidation stays on this thread; the library has
			// no locks of its own.
		drain:
			for {
				select {
				case path := <-watcher.Events():
					core.LogInfo("asset file '%s' changed, dropping cached handle", path)
					library.InvalidateHandle(path)
				default:
					break drain
				}
			}
		}
	}
}
