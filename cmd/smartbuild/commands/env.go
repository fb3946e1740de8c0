package commands

import (
	"fmt"
	"os"

	"github.com/craylabs/smartbuild/internal/config"
	"github.com/craylabs/smartbuild/internal/pipeline"
	"github.com/craylabs/smartbuild/internal/platform"
)

// EnvCmd reports the detected platform, the options a build would run with,
// and whether each stage's build script can be located. It is diagnostic
// only and always exits zero.
type EnvCmd struct{}

func (e *EnvCmd) Run(_ *Global, root *CLI) error {
	bctx, err := root.loadContext()
	if err != nil {
		return err
	}

	plat := platform.Host()
	fmt.Printf("platform:      %s\n", plat)
	fmt.Printf("install root:  %s\n", bctx.lay.Root)
	fmt.Printf("scripts dir:   %s\n", bctx.scriptsDir)

	cfg, err := config.Resolve(config.Overrides{Verbose: root.Verbose}, os.LookupEnv, bctx.file, plat)
	if err != nil {
		statusLine(colWarn, "a build would fail: "+err.Error())
		return nil
	}

	fmt.Printf("device:        %s\n", cfg.Device)
	fmt.Printf("backends:      %s\n", backendsString(cfg))

	fmt.Println("stages:")
	for _, st := range pipeline.BuildStages(cfg, bctx.scriptsDir, bctx.lay) {
		state := "ok"
		if _, err := os.Stat(st.Script); err != nil {
			state = "missing"
		}
		fmt.Printf("  %-24s %s (%s)\n", st.Name, st.Script, state)
	}
	return nil
}
