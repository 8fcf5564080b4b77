// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Ovenworks

package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/ovenworks/ovenctl/pkg/ramp"
)

var (
	rampSpec     string
	rampShow     bool
	rampTemp     float64
	rampHold     float64
	rampRate     float64
	rampWait     bool
	rampStable   bool
	rampLimit    float64
	rampDry      bool
	rampJump     bool
	rampInterval float64
	rampXDur     float64
	rampTestCmd  string
)

var rampCmd = &cobra.Command{
	Use:   "ramp",
	Short: "Run a temperature profile",
	Long: `Run the oven through a temperature profile, either given directly with
--spec or generated from --temp, --hold and --rate.

A profile is a semicolon-separated list of actions: H holds, R ramps,
W waits for the temperature, I idles, X runs the subtest command and
J jumps to a label. [N#...] repeats a group N times. For example,

    Rr60,s85;[4#X;Ht0.5;]Rr60,s25;0:I

ramps to 85 degC at 60 degC/h, holds for two hours running the subtest
every half hour, then ramps back down and idles.

The subtest command runs via the shell; a non-zero exit jumps to the
action's j label, typically the final idle, aborting the profile safely.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile := rampSpec
		if profile == "" {
			var err error
			profile, err = ramp.Generate(ramp.GenOptions{
				Temp:     rampTemp,
				Hold:     rampHold,
				Rate:     rampRate,
				Wait:     rampWait,
				Stable:   rampStable,
				Limit:    rampLimit,
				Dry:      rampDry,
				Jump:     rampJump,
				Interval: rampInterval / 60,
				XDur:     rampXDur / 60,
			})
			if err != nil {
				return err
			}
		}
		spec, err := ramp.Parse(profile)
		if err != nil {
			return err
		}
		if rampShow {
			fmt.Println(profile)
			return nil
		}

		c, err := newClient()
		if err != nil {
			return err
		}

		var test ramp.TestFunc
		if rampTestCmd != "" {
			test = shellSubtest(rampTestCmd)
		}
		ctl := ramp.NewController(spec, c, test)
		err = ctl.Run(func(a ramp.Action) {
			fmt.Printf("Started action: %s\n", a)
		})
		if err != nil {
			return err
		}
		fmt.Println("Profile complete")
		return nil
	},
}

func init() {
	rampCmd.Flags().StringVarP(&rampSpec, "spec", "s", "", "Profile to run (overrides the generator flags)")
	rampCmd.Flags().BoolVar(&rampShow, "show", false, "Print the profile instead of running it")
	rampCmd.Flags().Float64Var(&rampTemp, "temp", 0, "Target temperature in degC")
	rampCmd.Flags().Float64Var(&rampHold, "hold", 0, "Hold time at the target in hours")
	rampCmd.Flags().Float64Var(&rampRate, "rate", 0, "Ramp rate in degC per hour")
	rampCmd.Flags().BoolVarP(&rampWait, "wait", "w", false, "Wait for the temperature at each plateau")
	rampCmd.Flags().BoolVar(&rampStable, "stable", false, "Demand six consecutive in-range readings when waiting")
	rampCmd.Flags().Float64Var(&rampLimit, "limit", 1.0, "Closeness tolerance in degrees")
	rampCmd.Flags().BoolVar(&rampDry, "dry", false, "Bedew protection while below 20 degC")
	rampCmd.Flags().BoolVar(&rampJump, "jump", false, "Abort the profile when a subtest fails")
	rampCmd.Flags().Float64Var(&rampInterval, "interval", 30, "Minutes between subtests")
	rampCmd.Flags().Float64Var(&rampXDur, "xdur", 0, "Minutes one subtest takes")
	rampCmd.Flags().StringVarP(&rampTestCmd, "test-cmd", "x", "", "Shell command to run for each X action")
	rootCmd.AddCommand(rampCmd)
}

// shellSubtest wraps a shell command as a subtest: a non-zero exit
// requests the jump, anything worse aborts the profile.
func shellSubtest(command string) ramp.TestFunc {
	return func() (bool, error) {
		cmd := exec.Command("sh", "-c", command)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		err := cmd.Run()
		if err == nil {
			return false, nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			fmt.Printf("Subtest failed (%s)\n", exitErr)
			return true, nil
		}
		return false, err
	}
}
