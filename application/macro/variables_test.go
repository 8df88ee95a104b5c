package macro

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariableStoreDefaults(t *testing.T) {
	logger, _ := test.NewNullLogger()
	vs := NewVariableStore(logger)

	assert.Equal(t, map[string]string{
		"!TIMEOUT":      "60",
		"!TIMEOUT_PAGE": "60",
		"!TIMEOUT_STEP": "6",
		"!REPLAYSPEED":  "MEDIUM",
		"!ERRORIGNORE":  "NO",
	}, vs.Builtins())
}

func TestSetBuiltinVariablesAllowList(t *testing.T) {
	logger, hook := test.NewNullLogger()
	vs := NewVariableStore(logger)

	vs.SetBuiltinVariables(map[string]string{
		"!VAR1":    "one",
		"!CUSTOM":  "nope",
		"!TIMEOUT": "5",
	})

	v, ok := vs.Builtin("!VAR1")
	assert.True(t, ok)
	assert.Equal(t, "one", v)

	v, _ = vs.Builtin("!TIMEOUT")
	assert.Equal(t, "5", v)

	_, ok = vs.Builtin("!CUSTOM")
	assert.False(t, ok)
	assert.False(t, IsSupportedBuiltin("!CUSTOM"), "a rejected write never grows the allow-list")

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "!CUSTOM")
}

func TestSetUserVariablesMerges(t *testing.T) {
	logger, _ := test.NewNullLogger()
	vs := NewVariableStore(logger)

	vs.SetUserVariables(map[string]string{"A": "1", "B": "2"})
	vs.SetUserVariables(map[string]string{"B": "3"})

	a, _ := vs.User("A")
	b, _ := vs.User("B")
	assert.Equal(t, "1", a)
	assert.Equal(t, "3", b)
}

func TestVariableStoreReset(t *testing.T) {
	logger, _ := test.NewNullLogger()
	vs := NewVariableStore(logger)
	vs.SetUserVariables(map[string]string{"A": "1"})
	vs.SetBuiltinVariables(map[string]string{"!REPLAYSPEED": "FAST", "!VAR2": "x"})

	vs.Reset()

	_, ok := vs.User("A")
	assert.False(t, ok)
	_, ok = vs.Builtin("!VAR2")
	assert.False(t, ok)
	speed, _ := vs.Builtin("!REPLAYSPEED")
	assert.Equal(t, "MEDIUM", speed)
}

func TestBuiltinsReturnsCopy(t *testing.T) {
	logger, _ := test.NewNullLogger()
	vs := NewVariableStore(logger)

	copied := vs.Builtins()
	copied["!TIMEOUT"] = "1"

	v, _ := vs.Builtin("!TIMEOUT")
	assert.Equal(t, "60", v)
}

func TestVariableStoreWithoutLogger(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	vs := NewVariableStore(nil)
	assert.NotPanics(t, func() {
		vs.SetBuiltinVariables(map[string]string{"!NOT_A_BUILTIN": "x", "!REPLAYSPEED": "FAST"})
	})

	speed, _ := vs.Builtin("!REPLAYSPEED")
	assert.Equal(t, "FAST", speed)
	_, ok := vs.Builtin("!NOT_A_BUILTIN")
	assert.False(t, ok)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
