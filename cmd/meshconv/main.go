/*
meshconv converts a single-mesh glTF file, as exported by Blender, into
a packed static mesh file. The mesh id is interned from the glTF mesh
name through the shared id store.

	usage: meshconv <gltf filename> <output filename>
*/
package main

import (
	"fmt"
	"os"

	"github.com/spaghettifunk/crpg/engine/assets"
	"github.com/spaghettifunk/crpg/engine/core"
	"github.com/spaghettifunk/crpg/engine/importer"
	"github.com/spaghettifunk/crpg/engine/strid"
)

const idStorePath = ".iddb"

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: meshconv <gltf filename> <output filename>\n")
		os.Exit(1)
	}
	gltfPath, outPath := os.Args[1], os.Args[2]

	db, err := strid.Load(idStorePath)
	if err != nil {
		core.LogFatal("cannot load id store '%s': %s", idStorePath, err.Error())
	}

	mesh, err := importer.StaticMeshFromGLTF(db, gltfPath)
	if err != nil {
		core.LogFatal("failed to convert '%s': %s", gltfPath, err.Error())
	}

	if err := db.Write(idStorePath); err != nil {
		core.LogFatal("cannot persist id store '%s': %s", idStorePath, err.Error())
	}

	if err := assets.WriteStaticMeshFile(outPath, []assets.StaticMeshData{mesh.Data}, mesh.Vertices, mesh.Indices); err != nil {
		core.LogFatal("failed to write '%s': %s", outPath, err.Error())
	}

	handle, err := assets.OpenStaticMeshFile(outPath)
	if err != nil {
		core.LogFatal("failed to verify '%s': %s", outPath, err.Error())
	}
	core.LogInfo("wrote %s:\n%s", outPath, handle.String())
	handle.Close()
}
