//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the viewer binary.
func (Build) Viewer() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/crpg", "."), withStream())
	return err
}

// Builds the offline tools (meshconv, strid).
func (Build) Tools() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/meshconv", "./cmd/meshconv"), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/strid", "./cmd/strid"), withStream()); err != nil {
		return err
	}
	return nil
}
