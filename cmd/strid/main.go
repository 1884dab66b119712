/*
strid drives the identifier interner from the command line.

	usage: strid <db-name> lookup <str>
	       strid <db-name> preproc <file>

lookup prints the identifier of a name, interning it if new. preproc
copies a source file to stdout with every ID("name") expression
replaced by its identifier. Both commands persist the store afterwards.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spaghettifunk/crpg/engine/core"
	"github.com/spaghettifunk/crpg/engine/strid"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: strid <db-name> <cmd> <args...>\n")
		os.Exit(1)
	}
	dbPath, cmd := os.Args[1], os.Args[2]

	db, err := strid.Load(dbPath)
	if err != nil {
		core.LogFatal("cannot load id store '%s': %s", dbPath, err.Error())
	}

	switch cmd {
	case "lookup":
		if len(os.Args) != 4 {
			fmt.Fprintf(os.Stderr, "usage: strid <db-name> lookup <str>\n")
			os.Exit(1)
		}
		fmt.Println(db.GetID(os.Args[3]))

	case "preproc":
		if len(os.Args) != 4 {
			fmt.Fprintf(os.Stderr, "usage: strid <db-name> preproc <file>\n")
			os.Exit(1)
		}
		src, err := os.ReadFile(os.Args[3])
		if err != nil {
			core.LogFatal("cannot read '%s': %s", os.Args[3], err.Error())
		}
		if err := strid.Preprocess(db, os.Stdout, src); err != nil {
			core.LogFatal("preproc '%s': %s", os.Args[3], err.Error())
		}

	default:
		core.LogFatal("'%s' is not a valid command", cmd)
	}

	if err := db.Write(dbPath); err != nil {
		core.LogFatal("cannot persist id store '%s': %s", dbPath, err.Error())
	}
}
