package main

import (
	"flag"
	"fmt"
)

type versionCmd struct{ r *root }

func (v *versionCmd) Program() string {
	if v.r == nil {
		return "retouch version"
	}
	return v.r.Program() + " version"
}

func (v *versionCmd) FlagSet() *flag.FlagSet { return nil }

func (v *versionCmd) Run() error {
	program := "retouch"
	if v.r != nil && v.r.program != "" {
		program = v.r.program
	}
	fmt.Printf("%s version %s\n", program, version)
	if commit != "" {
		fmt.Printf("commit: %s\n", commit)
	}
	if date != "" {
		fmt.Printf("built: %s\n", date)
	}
	return nil
}
