// Package main is the entry point for the tune2dp CLI
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/james-see/tune2dp/pkg/api"
	"github.com/james-see/tune2dp/pkg/converter"
	"github.com/james-see/tune2dp/pkg/converter/devices"
	"github.com/james-see/tune2dp/pkg/tui"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile string
	deviceName string
	serverPort int
	verbose    bool
	sampleRate int
	volume     float64
	velocity   uint8
	dumpLump   bool
)

var logger = log.New(io.Discard, "", log.Ldate|log.Ltime)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tune2dp",
	Short: "Convert tunes into Doom PC speaker sound effects",
	Long: `tune2dp converts a text tune into a Doom PC speaker sound effect
lump. With no arguments it reads a tune from standard input and writes
the lump to standard output.

Tune syntax: notes a-g with optional - (flat) or + (sharp), r for rest,
a duration digit run (4 = quarter note), an optional '.' for dotted,
and '<' or '>' to shift down or up an octave. Segments are separated by
'/', and lines starting with ';' are comments.

Examples:
  tune2dp < pistol.txt > dspistol.lmp
  tune2dp convert pistol.txt -o dspistol.lmp
  tune2dp tune2wav pistol.txt
  tune2dp dp2midi dspistol.lmp -o pistol.mid
  tune2dp inspect dspistol.lmp
  tune2dp tui
  tune2dp serve --port 8080`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetOutput(os.Stderr)
		}
	},
	RunE: runFilter,
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Auto-detect and convert between formats",
	Long:  `Automatically detects input format and converts to the output format based on file extension.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var tune2dpCmd = &cobra.Command{
	Use:   "tune2dp <input.txt>",
	Short: "Convert a tune to a PC speaker lump",
	Args:  cobra.ExactArgs(1),
	RunE:  conversion(converter.FormatTune, converter.FormatDP),
}

var tune2midiCmd = &cobra.Command{
	Use:   "tune2midi <input.txt>",
	Short: "Convert a tune to MIDI",
	Args:  cobra.ExactArgs(1),
	RunE:  conversion(converter.FormatTune, converter.FormatMIDI),
}

var tune2wavCmd = &cobra.Command{
	Use:   "tune2wav <input.txt>",
	Short: "Render a tune to WAV",
	Args:  cobra.ExactArgs(1),
	RunE:  conversion(converter.FormatTune, converter.FormatWAV),
}

var dp2midiCmd = &cobra.Command{
	Use:   "dp2midi <input.lmp>",
	Short: "Convert a PC speaker lump to MIDI",
	Args:  cobra.ExactArgs(1),
	RunE:  conversion(converter.FormatDP, converter.FormatMIDI),
}

var dp2wavCmd = &cobra.Command{
	Use:   "dp2wav <input.lmp>",
	Short: "Render a PC speaker lump to WAV",
	Args:  cobra.ExactArgs(1),
	RunE:  conversion(converter.FormatDP, converter.FormatWAV),
}

var midi2dpCmd = &cobra.Command{
	Use:   "midi2dp <input.mid>",
	Short: "Convert a monophonic MIDI file to a PC speaker lump",
	Args:  cobra.ExactArgs(1),
	RunE:  conversion(converter.FormatMIDI, converter.FormatDP),
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <input.lmp>",
	Short: "Show the contents of a PC speaker lump",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&deviceName, "device", "d", "dp", "Target device (dp)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")

	// Convert command
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	_ = convertCmd.MarkFlagRequired("output")

	for _, cmd := range []*cobra.Command{tune2dpCmd, tune2midiCmd, tune2wavCmd, dp2midiCmd, dp2wavCmd, midi2dpCmd} {
		cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path")
	}

	for _, cmd := range []*cobra.Command{convertCmd, tune2wavCmd, dp2wavCmd} {
		cmd.Flags().IntVar(&sampleRate, "sample-rate", converter.DefaultSampleRate, "WAV sample rate in Hz")
		cmd.Flags().Float64Var(&volume, "volume", converter.DefaultVolume, "WAV volume (0-1)")
	}

	for _, cmd := range []*cobra.Command{convertCmd, tune2midiCmd, dp2midiCmd} {
		cmd.Flags().Uint8Var(&velocity, "velocity", 100, "MIDI note velocity (1-127)")
	}

	// inspect command
	inspectCmd.Flags().BoolVar(&dumpLump, "dump", false, "Dump the decoded sound effect")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(tune2dpCmd)
	rootCmd.AddCommand(tune2midiCmd)
	rootCmd.AddCommand(tune2wavCmd)
	rootCmd.AddCommand(dp2midiCmd)
	rootCmd.AddCommand(dp2wavCmd)
	rootCmd.AddCommand(midi2dpCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func getDevice() converter.Device {
	switch strings.ToLower(deviceName) {
	case "dp", "pcspeaker":
		return devices.NewPCSpeaker()
	default:
		logger.Printf("Unknown device %q, using dp", deviceName)
		return devices.NewPCSpeaker()
	}
}

func newConverter() *converter.Converter {
	conv := converter.New(getDevice())
	conv.SetWAVOptions(converter.WAVOptions{SampleRate: sampleRate, Volume: volume})
	conv.SetVelocity(velocity)
	return conv
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}

// runFilter reads a tune from stdin and writes the lump to stdout
func runFilter(cmd *cobra.Command, args []string) error {
	return filter(cmd.InOrStdin(), cmd.OutOrStdout(), newConverter())
}

func filter(in io.Reader, out io.Writer, conv *converter.Converter) error {
	tune, err := converter.ReadTune(in)
	if err != nil {
		return err
	}
	logger.Printf("Read tune of %d characters", len(tune))

	return conv.WriteDP(out, tune)
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	conv := newConverter()

	fmt.Printf("Converting %s -> %s\n", input, outputFile)
	if err := conv.ConvertFile(input, outputFile); err != nil {
		return err
	}
	fmt.Println("Conversion complete!")
	return nil
}

// conversion builds a command that converts one file between fixed formats
func conversion(from, to converter.Format) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		input := args[0]
		output := getOutputPath(input, to.Extension())

		data, err := os.ReadFile(input)
		if err != nil {
			return err
		}
		logger.Printf("Read %d bytes from %s", len(data), input)

		result, err := newConverter().Convert(data, from, to)
		if err != nil {
			return err
		}

		if err := os.WriteFile(output, result, 0644); err != nil {
			return err
		}

		fmt.Printf("Converted %s -> %s\n", input, output)
		return nil
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	lc := converter.NewLumpConverter(getDevice())
	fx, err := lc.ParseLumpFile(args[0])
	if err != nil {
		return err
	}

	return inspect(cmd.OutOrStdout(), args[0], fx)
}

func inspect(w io.Writer, name string, fx *converter.SoundEffect) error {
	if dumpLump {
		spew.Fdump(w, fx)
		return nil
	}

	runs := fx.Runs()
	fmt.Fprintf(w, "File:     %s\n", name)
	fmt.Fprintf(w, "Samples:  %d\n", fx.Len())
	fmt.Fprintf(w, "Duration: %s\n", fx.Duration())
	fmt.Fprintf(w, "Runs:     %d\n", len(runs))

	for _, run := range runs {
		if hz, ok := converter.Frequency(run.Value); ok {
			fmt.Fprintf(w, "  %3d x%-4d %8.2f Hz\n", run.Value, run.Length, hz)
		} else {
			fmt.Fprintf(w, "  %3d x%-4d     rest\n", run.Value, run.Length)
		}
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}
