package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	devenv "hrtools/dev/env"
)

func create(recreate bool) error {
	root, err := devenv.GetWorkspaceRoot()
	if err != nil {
		return fmt.Errorf("the dev environment must be created inside the repository (somewhere below the 'go.mod' file)")
	}
	stateDir := filepath.Join(root, "dev", ".state")

	if recreate {
		err = os.RemoveAll(stateDir)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	err = os.MkdirAll(stateDir, 0700)
	if err != nil && !os.IsExist(err) {
		return err
	}

	err = SetupHorseRealityTests()
	if err != nil {
		return err
	}
	PrintConfigLocations()

	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created sucessfully!")
}
