package devenv

// HorseRealityTestConfig is read from dev/.state/horsereality_config.json5
// by the live tests.
type HorseRealityTestConfig struct {
	RememberName  string `json:"remember_name"`
	RememberValue string `json:"remember_value"`
	// Lifenumber is a horse the account can view.
	Lifenumber   string `json:"lifenumber"`
	AutoRollover bool   `json:"auto_rollover"`
}

const HorseRealityConfigName = "horsereality_config.json5"
