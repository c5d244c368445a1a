package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/rigkit/asset"
	"github.com/lixenwraith/rigkit/audio"
	"github.com/lixenwraith/rigkit/config"
	"github.com/lixenwraith/rigkit/core"
	"github.com/lixenwraith/rigkit/engine"
)

const (
	frameInterval = 33 * time.Millisecond
	cueVolume     = 0.4
)

var (
	rigFlag    = flag.String("rig", "", "rig YAML file (default: embedded humanoid)")
	configFlag = flag.String("config", "", "config file (yaml or toml)")
	debugFlag  = flag.Bool("debug", false, "write logs to "+logFileName)
	cueFlag    = flag.Bool("cue", false, "play audio cues on rig events")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Log.Dir != "" {
		logDir = cfg.Log.Dir
	}
	if logFile := setupLogging(*debugFlag || cfg.Log.Debug); logFile != nil {
		defer logFile.Close()
	}

	rf, err := loadRig(*rigFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rig: %v\n", err)
		os.Exit(1)
	}

	sb, err := NewSandbox(rf, cfg, engine.NewTimeProvider())
	if err != nil {
		fmt.Fprintf(os.Stderr, "sandbox: %v\n", err)
		os.Exit(1)
	}

	if *cueFlag {
		cues := audio.NewCueManager(cueVolume)
		if err := cues.Initialize(); err != nil {
			log.Printf("[Audio] initialization failed: %v (continuing without audio)", err)
		} else {
			sb.Runtime().RegisterHandler(audio.NewCueHandler(cues))
			defer cues.Cleanup()
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "terminal: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	// Engine goroutines restore the terminal before a crash report
	core.SetCrashHook(func(any) { screen.Fini() })

	scheduler := engine.NewClockScheduler(sb.Runtime(), cfg.Engine.TickInterval)
	scheduler.Start()
	defer scheduler.Stop()
	defer sb.Close()

	run(screen, sb)
}

func loadRig(path string) (*asset.RigFile, error) {
	if path == "" {
		return asset.DefaultRig()
	}
	return asset.LoadRigFile(path)
}

// run polls input and redraws until the user quits
func run(screen tcell.Screen, sb *Sandbox) {
	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	})

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			if !handleEvent(screen, sb, ev) {
				return
			}
		case <-ticker.C:
			screen.Clear()
			draw(screen, sb.Snapshot())
			screen.Show()
		}
	}
}

// handleEvent applies one input event; false requests exit
func handleEvent(screen tcell.Screen, sb *Sandbox, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			return handleKey(sb, ev.Rune())
		}
	case *tcell.EventResize:
		screen.Sync()
	}
	return true
}

// handleKey maps sandbox keys to rig actions; false requests exit
func handleKey(sb *Sandbox, r rune) bool {
	switch r {
	case 'q':
		return false
	case 'c':
		sb.ToggleConstraint(nodeConstraintID)
	case 'b':
		sb.ToggleConstraint(boneConstraintID)
	case 'f':
		sb.ToggleConstraint(floorConstraintID)
	case 'p':
		sb.RequestPose()
	case 'e':
		sb.EndPose()
	case 'n':
		sb.SelectNext()
	case ' ':
		sb.TogglePause()
	}
	return true
}
