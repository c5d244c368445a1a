package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/rigkit/asset"
	"github.com/lixenwraith/rigkit/config"
	"github.com/lixenwraith/rigkit/engine"
	"github.com/lixenwraith/rigkit/pose"
	"github.com/lixenwraith/rigkit/skeleton"
	"github.com/lixenwraith/rigkit/vmath"
)

// builtinRig names the embedded humanoid in place of a file path
const builtinRig = "builtin"

func newRootCmd(version string) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:     "rigctl",
		Short:   "Validate, inspect and publish rig definitions",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors:      true,
		SilenceUsage:       true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (yaml or toml)")

	loadConfig := func() (config.Config, error) {
		return config.Load(configPath)
	}

	root.AddCommand(
		newValidateCmd(),
		newPoseCmd(),
		newPublishCmd(loadConfig),
	)
	return root
}

func printerFor(cmd *cobra.Command) printer {
	return printer{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()}
}

func loadRig(path string) (*asset.RigFile, error) {
	if path == builtinRig {
		return asset.DefaultRig()
	}
	return asset.LoadRigFile(path)
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <rig.yaml|builtin>",
		Short: "Build every bone, pose, constraint and animator in a rig file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pr := printerFor(cmd)

			rf, err := loadRig(args[0])
			if err != nil {
				return pr.Error("Cannot read rig", err, "Check the path and YAML syntax.")
			}
			h, err := rf.BuildHierarchy()
			if err != nil {
				return pr.Error("Invalid skeleton", err, "")
			}
			rig := skeleton.NewRig(h)
			if err := rf.Validate(asset.BoneBindings(h, rig)); err != nil {
				return pr.Error("Invalid rig", err, "")
			}

			pr.Success("%s is valid", args[0])
			pr.Info("  bones:       %d", h.Len())
			pr.Info("  poses:       %d", len(rf.Poses))
			pr.Info("  constraints: %d", len(rf.Constraints))
			pr.Info("  animators:   %d", len(rf.Animators))
			return nil
		},
	}
}

func newPoseCmd() *cobra.Command {
	var (
		at         time.Duration
		transition time.Duration
	)

	cmd := &cobra.Command{
		Use:   "pose <rig.yaml|builtin> <pose-id>",
		Short: "Print the local rotation of each clip bone while a pose plays",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pr := printerFor(cmd)

			rf, err := loadRig(args[0])
			if err != nil {
				return pr.Error("Cannot read rig", err, "")
			}
			h, err := rf.BuildHierarchy()
			if err != nil {
				return pr.Error("Invalid skeleton", err, "")
			}
			spec, ok := rf.Pose(args[1])
			if !ok {
				return pr.Error("Unknown pose", fmt.Errorf("%w: %q", pose.ErrUnknownPose, args[1]), "Run 'rigctl validate' to list poses.")
			}
			clip, err := asset.BuildPose(h, spec)
			if err != nil {
				return pr.Error("Invalid pose", err, "")
			}

			local, err := samplePose(h, clip, transition, at)
			if err != nil {
				return pr.Error("Cannot sample pose", err, "")
			}

			pr.Step("pose %s at %s of %s transition", clip.ID, at, transition)
			for _, b := range clip.Bones {
				e := vmath.ToEuler(local[b.Bone])
				pr.Info("  %-20s % 8.2f % 8.2f % 8.2f", h.Name(b.Bone), e.X(), e.Y(), e.Z())
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&at, "at", 0, "time since Play to sample")
	cmd.Flags().DurationVar(&transition, "transition", 0, "start transition duration")
	return cmd
}

// samplePose plays clip on a bind-pose rig under a mock clock and samples it after elapsed
func samplePose(h *skeleton.Hierarchy, clip *pose.Pose, transition, elapsed time.Duration) (pose.LocalPose, error) {
	clock := engine.NewMockTimeProvider(time.Unix(0, 0))
	sched := engine.NewScheduler(clock)
	rig := skeleton.NewRig(h)

	player := pose.NewPlayer(clip, rig, rig.Tracked(), sched)
	player.Play(&pose.PlayingParameters{StartTransitionDuration: transition})
	clock.Advance(elapsed)
	sched.Tick()
	return player.GetPose(h)
}

func newPublishCmd(loadConfig func() (config.Config, error)) *cobra.Command {
	var (
		addr   string
		prefix string
	)

	cmd := &cobra.Command{
		Use:   "publish <rig.yaml|builtin>",
		Short: "Write every pose definition to the Redis pose store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pr := printerFor(cmd)

			cfg, err := loadConfig()
			if err != nil {
				return pr.Error("Invalid configuration", err, "")
			}
			if addr == "" {
				addr = cfg.Store.RedisAddr
			}
			if prefix == "" {
				prefix = cfg.Store.KeyPrefix
			}
			if addr == "" {
				return pr.Error("No Redis address", fmt.Errorf("%w: store.redis_addr is empty", config.ErrInvalidConfig), "Pass --redis host:port or set RIGKIT_STORE_REDIS_ADDR.")
			}

			rf, err := loadRig(args[0])
			if err != nil {
				return pr.Error("Cannot read rig", err, "")
			}
			h, err := rf.BuildHierarchy()
			if err != nil {
				return pr.Error("Invalid skeleton", err, "")
			}

			rdb := redis.NewClient(&redis.Options{Addr: addr})
			defer rdb.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			store := asset.NewRedisPoseStore(rdb, prefix, h)
			n, err := store.Publish(ctx, rf)
			if err != nil {
				return pr.Error("Publish failed", err, "")
			}
			pr.Success("published %d poses to %s (prefix %s)", n, addr, prefix)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "redis", "", "Redis address, overrides store.redis_addr")
	cmd.Flags().StringVar(&prefix, "prefix", "", "key prefix, overrides store.key_prefix")
	return cmd
}
