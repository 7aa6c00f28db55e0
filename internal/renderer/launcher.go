package renderer

import (
	"os"
	"strings"

	"render-service/internal/config"
)

// LaunchConfig holds the parameters the engine is launched with. The
// environment is a per-call copy, so concurrent renders with different
// timezones stay isolated.
type LaunchConfig struct {
	Env               []string
	IgnoreHTTPSErrors bool
	NoSandbox         bool
	Headless          bool
	ExecPath          string
	ExtraArgs         []string
}

// BuildLaunchConfig is a pure function from static configuration and a
// normalized request to engine-launch parameters. Caller-supplied launch
// overrides win at the top level; there is no deep merge.
func BuildLaunchConfig(cfg *config.Config, req *Request) LaunchConfig {
	tz := cfg.Timezone
	if req.Timezone != "" {
		tz = req.Timezone
	}

	env := make([]string, 0, len(os.Environ())+1)
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "TZ=") {
			continue
		}
		env = append(env, kv)
	}
	if tz != "" {
		env = append(env, "TZ="+tz)
	}

	lc := LaunchConfig{
		Env:               env,
		IgnoreHTTPSErrors: cfg.IgnoreHTTPSErrors,
		NoSandbox:         true,
		Headless:          true,
		ExecPath:          cfg.ChromeBin,
	}

	if lo := req.Overrides.LaunchOptions; lo != nil {
		if len(lo.Args) > 0 {
			lc.ExtraArgs = append([]string{}, lo.Args...)
		}
		if lo.Headless != nil {
			lc.Headless = *lo.Headless
		}
	}

	return lc
}
