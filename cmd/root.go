/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Alexander3XL/ssterm/internal/term"
	"github.com/Alexander3XL/ssterm/serial"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd is the terminal itself: ssterm [flags] <device>
var rootCmd = &cobra.Command{
	Use:     "ssterm [flags] <device>",
	Short:   "Simple serial-port terminal",
	Version: "2.0.0",
	Long: `ssterm - simple serial-port terminal

Opens a serial device and bridges it with the console: keystrokes go to
the device, received bytes are printed with the selected output format.
Quit with the escape character (Ctrl-] by default).

Output modes:
  raw        raw passthrough (default)
  split      hex/ASCII split view with live partial rows
  splitfull  hex/ASCII split view, completed rows only
  hex        hex dump
  hexnl      hex dump with a row break on every received newline

Input modes:
  raw        raw passthrough (default)
  hex        interpret typed hex digit pairs as bytes

Example usage:
  ssterm /dev/ttyUSB0
  ssterm /dev/ttyUSB0 -b 9600 -d 8 -p even -t 1
  ssterm /dev/ttyUSB0 -o split --rx-nl crlf --tx-nl crlf
  ssterm /dev/ttyUSB0 -o hex -c 0x0d,0x0a`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		device := args[0]

		serialOpts, err := buildSerialOptions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
			cmd.Usage()
			os.Exit(1)
		}

		opts, err := buildTermOptions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
			cmd.Usage()
			os.Exit(1)
		}

		if err := runTerminal(device, opts, serialOpts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ssterm.yaml)")

	// Serial port options
	rootCmd.Flags().IntP("baudrate", "b", 115200, "Baud rate (e.g. 9600, 115200)")
	rootCmd.Flags().IntP("databits", "d", 8, "Number of data bits [5,6,7,8]")
	rootCmd.Flags().StringP("parity", "p", "none", "Parity: none, odd, even")
	rootCmd.Flags().IntP("stopbits", "t", 1, "Number of stop bits [1,2]")
	rootCmd.Flags().StringP("flow-control", "f", "none", "Flow control: none, rtscts, xonxoff")

	// Output formatting options
	rootCmd.Flags().StringP("output", "o", "raw", "Output mode: raw, split, splitfull, hex, hexnl")
	rootCmd.Flags().String("rx-nl", "raw", "Receive newline substitution: raw, cr, lf, crlf, crorlf")
	rootCmd.Flags().StringP("color", "c", "", "Comma-delimited list of characters to color code, in ASCII or hex: A,$,0x0d,0x0a,...")
	rootCmd.Flags().Int("columns", term.DefaultColumns, "Bytes per row in hex and split output modes")

	// Input formatting options
	rootCmd.Flags().StringP("input", "i", "raw", "Input mode: raw, hex")
	rootCmd.Flags().String("tx-nl", "raw", "Transmit newline substitution: raw, none, cr, lf, crlf")
	rootCmd.Flags().BoolP("echo", "e", false, "Enable local character echo")
	rootCmd.Flags().String("escape", "0x1d", "Session escape character, in ASCII or hex (default Ctrl-])")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".ssterm" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ssterm")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Flags win over config file values; config file values win over
	// flag defaults.
	cobra.CheckErr(viper.BindPFlags(rootCmd.Flags()))
}

// buildSerialOptions turns the serial flags into serial.Options
func buildSerialOptions() ([]serial.Option, error) {
	opts := []serial.Option{
		serial.WithBaudRate(viper.GetInt("baudrate")),
		serial.WithDataBits(viper.GetInt("databits")),
		serial.WithStopBits(viper.GetInt("stopbits")),
	}

	switch strings.ToLower(viper.GetString("parity")) {
	case "none":
		opts = append(opts, serial.WithParity(serial.ParityNone))
	case "odd":
		opts = append(opts, serial.WithParity(serial.ParityOdd))
	case "even":
		opts = append(opts, serial.WithParity(serial.ParityEven))
	default:
		return nil, fmt.Errorf("invalid parity %q", viper.GetString("parity"))
	}

	switch strings.ToLower(viper.GetString("flow-control")) {
	case "none":
		opts = append(opts, serial.WithFlowControl(serial.FlowControlNone))
	case "rtscts":
		opts = append(opts, serial.WithFlowControl(serial.FlowControlRTSCTS))
	case "xonxoff":
		opts = append(opts, serial.WithFlowControl(serial.FlowControlXonXoff))
	default:
		return nil, fmt.Errorf("invalid flow control %q", viper.GetString("flow-control"))
	}

	return opts, nil
}

// buildTermOptions turns the formatting flags into session options
func buildTermOptions() (term.Options, error) {
	opts := term.DefaultOptions()

	var err error
	if opts.Output, err = term.ParseOutputMode(viper.GetString("output")); err != nil {
		return opts, err
	}
	if opts.Input, err = term.ParseInputMode(viper.GetString("input")); err != nil {
		return opts, err
	}
	if opts.TxNewline, err = term.ParseTxNewline(viper.GetString("tx-nl")); err != nil {
		return opts, err
	}
	if opts.RxNewline, err = term.ParseRxNewline(viper.GetString("rx-nl")); err != nil {
		return opts, err
	}

	if spec := viper.GetString("color"); spec != "" {
		if opts.Colors, err = term.ParseColorChars(spec); err != nil {
			return opts, err
		}
	}

	if opts.EscapeByte, err = parseByteSpec(viper.GetString("escape")); err != nil {
		return opts, fmt.Errorf("invalid escape character: %v", err)
	}

	opts.Columns = viper.GetInt("columns")
	if opts.Columns < 2 || opts.Columns%2 != 0 {
		return opts, fmt.Errorf("invalid column count %d: must be even and at least 2", opts.Columns)
	}

	opts.Echo = viper.GetBool("echo")
	return opts, nil
}

// parseByteSpec parses a byte value given as a single ASCII character or
// a 0x-prefixed hex literal.
func parseByteSpec(s string) (byte, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	if len(s) > 2 && s[0:2] == "0x" {
		v, err := strconv.ParseUint(s[2:], 16, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid hex byte %q", s)
		}
		return byte(v), nil
	}
	return 0, fmt.Errorf("invalid byte spec %q", s)
}

// runTerminal opens the serial device and the raw console, runs the
// relay loop, and releases both unconditionally when the loop exits.
func runTerminal(device string, opts term.Options, serialOpts ...serial.Option) error {
	port, err := serial.Open(device, serialOpts...)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	defer port.Close()

	console, err := term.OpenConsole(opts.Echo)
	if err != nil {
		return fmt.Errorf("failed to open console in raw mode: %w", err)
	}
	defer console.Restore()

	loop := term.NewLoop(port, console.Input(), console.Output(), opts)
	err = loop.Run()

	// Leave the shell prompt on a fresh line after the raw session
	fmt.Println()
	return err
}
