package main

import (
	"github.com/spf13/cobra"

	"loadfinder/internal/loads"
)

// filterFlags binds the shared filter vocabulary to a command.
type filterFlags struct {
	date        string
	originCity  string
	originState string
	destCity    string
	destState   string
	maxOriginDH int64
	maxDestDH   int64
}

func (f *filterFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.date, "date", "", "Pickup date (ISO or feed format, TODAY accepted)")
	flags.StringVar(&f.originCity, "origin-city", "", "Origin city (case-insensitive)")
	flags.StringVar(&f.originState, "origin-state", "", "Origin state (case-insensitive)")
	flags.StringVar(&f.destCity, "dest-city", "", "Destination city (case-insensitive)")
	flags.StringVar(&f.destState, "dest-state", "", "Destination state (case-insensitive)")
	flags.Int64Var(&f.maxOriginDH, "max-origin-deadhead", 0, "Maximum origin deadhead miles (inclusive)")
	flags.Int64Var(&f.maxDestDH, "max-dest-deadhead", 0, "Maximum destination deadhead miles (inclusive)")
}

func (f *filterFlags) spec(cmd *cobra.Command, tag string) loads.FilterSpec {
	spec := loads.FilterSpec{
		Tag:         tag,
		Date:        f.date,
		OriginCity:  f.originCity,
		OriginState: f.originState,
		DestCity:    f.destCity,
		DestState:   f.destState,
	}
	if cmd.Flags().Changed("max-origin-deadhead") {
		v := f.maxOriginDH
		spec.MaxOriginDeadhead = &v
	}
	if cmd.Flags().Changed("max-dest-deadhead") {
		v := f.maxDestDH
		spec.MaxDestDeadhead = &v
	}
	return spec
}
