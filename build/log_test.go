package build

import (
	"io"
	"testing"

	"github.com/btcsuite/btclog"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, subsystems ...string) *SubLoggerManager {
	t.Helper()

	manager := NewSubLoggerManager(btclog.NewBackend(io.Discard))
	for _, subsystem := range subsystems {
		manager.GenSubLogger(subsystem)
	}

	return manager
}

// TestNewSubLogger asserts that a nil generator disables logging and a real
// one is consulted.
func TestNewSubLogger(t *testing.T) {
	t.Parallel()

	require.Equal(t, btclog.Disabled, NewSubLogger("MINR", nil))

	manager := newTestManager(t)
	logger := NewSubLogger("MINR", manager.GenSubLogger)
	require.NotEqual(t, btclog.Disabled, logger)
	require.Equal(t, logger, manager.SubLoggers()["MINR"])
}

// TestSubLoggerManager asserts registration is idempotent and the
// registered subsystems come back sorted.
func TestSubLoggerManager(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, "PFET", "MINR")
	require.Equal(
		t, manager.GenSubLogger("MINR"),
		manager.GenSubLogger("MINR"),
	)
	require.Equal(
		t, []string{"MINR", "PFET"},
		manager.SupportedSubsystems(),
	)
}

// TestParseAndSetDebugLevels covers the accepted debug level grammar and
// the rejection of malformed specifications.
func TestParseAndSetDebugLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		level   string
		wantErr bool

		// wantLevels is checked per subsystem when the parse should
		// succeed.
		wantLevels map[string]btclog.Level
	}{{
		name:  "global level",
		level: "debug",
		wantLevels: map[string]btclog.Level{
			"MINR": btclog.LevelDebug,
			"PFET": btclog.LevelDebug,
		},
	}, {
		name:  "global level with override",
		level: "trace,PFET=error",
		wantLevels: map[string]btclog.Level{
			"MINR": btclog.LevelTrace,
			"PFET": btclog.LevelError,
		},
	}, {
		name:  "override only",
		level: "MINR=critical",
		wantLevels: map[string]btclog.Level{
			"MINR": btclog.LevelCritical,
			"PFET": btclog.LevelInfo,
		},
	}, {
		name:  "off is a valid level",
		level: "off",
		wantLevels: map[string]btclog.Level{
			"MINR": btclog.LevelOff,
			"PFET": btclog.LevelOff,
		},
	}, {
		name:    "invalid global level",
		level:   "loud",
		wantErr: true,
	}, {
		name:    "missing level in pair",
		level:   "info,MINR",
		wantErr: true,
	}, {
		name:    "unknown subsystem",
		level:   "ZZZZ=debug",
		wantErr: true,
	}, {
		name:    "invalid subsystem level",
		level:   "MINR=loud",
		wantErr: true,
	}}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			manager := newTestManager(t, "MINR", "PFET")
			err := ParseAndSetDebugLevels(test.level, manager)
			if test.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			for subsystem, level := range test.wantLevels {
				require.Equal(
					t, level,
					manager.SubLoggers()[subsystem].Level(),
					subsystem,
				)
			}
		})
	}
}
