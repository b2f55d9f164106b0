package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	devenv "hrtools/dev/env"

	"github.com/tcnksm/go-input"
)

func SetupHorseRealityTests() error {
	path, err := devenv.GetStateFilePath(devenv.HorseRealityConfigName)
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if !os.IsNotExist(err) {
		slog.Info("horse reality credentials have already been provided")
		return err
	}

	ui := input.DefaultUI()
	required := &input.Options{Required: true, Loop: true}

	name, err := ui.Ask("remember cookie name (remember_web_...):", required)
	if err != nil {
		return err
	}
	value, err := ui.Ask("remember cookie value:", &input.Options{Required: true, Loop: true, Mask: true})
	if err != nil {
		return err
	}
	lifenumber, err := ui.Ask("lifenumber of a horse to fetch (optional):", &input.Options{
		Loop: true,
		ValidateFunc: func(s string) error {
			if s == "" {
				return nil
			}
			_, err := strconv.Atoi(s)
			return err
		},
	})
	if err != nil {
		return err
	}
	autoRollover, err := ui.Ask("complete the daily rollover automatically? (y/n):", &input.Options{
		Default: "n",
		Loop:    true,
		ValidateFunc: func(s string) error {
			if s != "y" && s != "n" {
				return fmt.Errorf("answer y or n")
			}
			return nil
		},
	})
	if err != nil {
		return err
	}

	config := devenv.HorseRealityTestConfig{
		RememberName:  name,
		RememberValue: value,
		Lifenumber:    lifenumber,
		AutoRollover:  autoRollover == "y",
	}
	contents, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, contents, 0600)
}

func PrintConfigLocations() {
	path, err := devenv.GetStateFilePath(devenv.HorseRealityConfigName)
	if err != nil {
		return
	}
	fmt.Println("live test config:", path)
	fmt.Println("a horsereality_config.local.json5 next to it overrides its fields")
}
