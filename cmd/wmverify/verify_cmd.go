package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ringmodel/wmverify/internal/render"
	"github.com/ringmodel/wmverify/internal/scenario"
	"github.com/ringmodel/wmverify/internal/verify"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [scenario|all]",
		Short: "Run one or all bundled scenarios and check their outcome",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runVerify,
	}
}

func selectScenarios(name string) ([]scenario.Scenario, error) {
	all := scenario.All()
	if name == "" || name == "all" {
		return all, nil
	}
	for _, s := range all {
		if s.Name == name {
			return []scenario.Scenario{s}, nil
		}
	}
	return nil, errors.Errorf("no such scenario %q", name)
}

func runVerify(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) == 1 {
		name = args[0]
	}

	scenarios, err := selectScenarios(name)
	if err != nil {
		return errors.Wrap(err, "verify")
	}

	mismatch := false
	sawUnknown := false

	for _, s := range scenarios {
		result, err := verify.Verify(context.Background(), s.Trace, s.Mode, s.Violation, s.Progress, nil)
		if err != nil {
			return errors.Wrapf(err, "verify %s", s.Name)
		}

		switch result.Outcome {
		case verify.Unsat:
			fmt.Printf("%s: verified\n", s.Name)
		case verify.Sat:
			fmt.Printf("%s: counterexample\n", s.Name)
			witness, err := render.Render(result)
			if err != nil {
				return errors.Wrapf(err, "render %s", s.Name)
			}
			fmt.Print(witness)
		case verify.Unknown:
			fmt.Printf("%s: solver gave up\n", s.Name)
			sawUnknown = true
		}

		if result.Outcome != s.Expected {
			log.WithFields(log.Fields{"scenario": s.Name, "got": result.Outcome, "want": s.Expected}).Warn("outcome mismatch")
			mismatch = true
		}
	}

	if mismatch {
		return errMismatch
	}
	if sawUnknown {
		return errUnknown
	}
	return nil
}
