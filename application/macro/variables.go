package macro

import (
	"regexp"

	"github.com/sirupsen/logrus"
)

var (
	userVariableName    = regexp.MustCompile(`^[0-9A-Z_]+$`)
	builtinVariableName = regexp.MustCompile(`^![0-9A-Z_]+$`)
)

// supportedBuiltins is the allow-list of writable built-in variables
var supportedBuiltins = map[string]bool{
	"!VAR1":         true,
	"!VAR2":         true,
	"!VAR3":         true,
	"!TIMEOUT":      true,
	"!TIMEOUT_PAGE": true,
	"!TIMEOUT_STEP": true,
	"!REPLAYSPEED":  true,
	"!ERRORIGNORE":  true,
	"!EXTRACT":      true,
}

// defaultBuiltins are re-applied on every reset
var defaultBuiltins = map[string]string{
	"!TIMEOUT":      "60",
	"!TIMEOUT_PAGE": "60",
	"!TIMEOUT_STEP": "6",
	"!REPLAYSPEED":  "MEDIUM",
	"!ERRORIGNORE":  "NO",
}

// VariableStore holds user variables and allow-listed built-in variables
type VariableStore struct {
	user    map[string]string
	builtin map[string]string
	logger  *logrus.Logger
}

// NewVariableStore - creates a store holding the built-in defaults
func NewVariableStore(logger *logrus.Logger) *VariableStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	vs := &VariableStore{logger: logger}
	vs.Reset()
	return vs
}

// Reset - clears both maps and re-applies the built-in defaults
func (vs *VariableStore) Reset() {
	vs.user = make(map[string]string)
	vs.builtin = make(map[string]string, len(defaultBuiltins))
	for name, value := range defaultBuiltins {
		vs.builtin[name] = value
	}
}

// SetUserVariables - merges variables into the user map
func (vs *VariableStore) SetUserVariables(variables map[string]string) {
	for name, value := range variables {
		vs.user[name] = value
	}
}

// SetBuiltinVariables - merges allow-listed variables, dropping the rest with a warning
func (vs *VariableStore) SetBuiltinVariables(variables map[string]string) {
	for name, value := range variables {
		if !supportedBuiltins[name] {
			vs.logger.Warnf("Built-in variable %s is not supported, ignored", name)
			continue
		}
		vs.builtin[name] = value
	}
}

// User - looks up a user variable
func (vs *VariableStore) User(name string) (string, bool) {
	v, ok := vs.user[name]
	return v, ok
}

// Builtin - looks up a built-in variable
func (vs *VariableStore) Builtin(name string) (string, bool) {
	v, ok := vs.builtin[name]
	return v, ok
}

// Builtins - returns a copy of the built-in map
func (vs *VariableStore) Builtins() map[string]string {
	out := make(map[string]string, len(vs.builtin))
	for k, v := range vs.builtin {
		out[k] = v
	}
	return out
}

// IsSupportedBuiltin - reports whether name is on the built-in allow-list
func IsSupportedBuiltin(name string) bool {
	return supportedBuiltins[name]
}
