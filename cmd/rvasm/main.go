package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rv32asm/assembler"
)

var rootCmd = &cobra.Command{
	Use:   "rvasm sourcefile",
	Short: "Two-pass assembler for the RV32 base instruction set",
	Long: `rvasm translates an RV32 assembly source file into a flat stream
of 32-bit machine words, written as one zero-padded lower-case hex word
per line. The output file is the input path with ".hex" appended.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
}

func run(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	asm := assembler.New()
	words, err := asm.Assemble(string(data))
	if err != nil {
		return err
	}

	out := path + ".hex"
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := assembler.WriteHex(f, words); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("hex file written to %s\n", out)
	return nil
}

func main() {
	// Adopt glog's flags so -v enables the engine's pass diagnostics.
	rootCmd.Flags().AddGoFlagSet(flag.CommandLine)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
