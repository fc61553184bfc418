/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/Alexander3XL/ssterm/serial"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// signalsCmd represents the signals command
var signalsCmd = &cobra.Command{
	Use:   "signals <device>",
	Short: "Display current modem signal states",
	Long: `Display the current state of all modem control signals.

Shows the state of CTS, DSR, RI, DCD, RTS, and DTR for the specified
device. Useful for checking whether the remote end is present before
starting a terminal session.

Examples:
  ssterm signals /dev/ttyUSB0
  ssterm signals /dev/ttyACM0`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		device := args[0]

		port, err := serial.Open(device)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()

		signals, err := port.GetModemSignals()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading modem signals: %v\n", err)
			os.Exit(1)
		}

		highStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")).
			Bold(true)

		lowStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

		state := func(s bool) string {
			if s {
				return highStyle.Render("HIGH")
			}
			return lowStyle.Render("LOW")
		}

		fmt.Printf("Modem signals for %s:\n\n", device)
		fmt.Printf("  CTS (Clear To Send):       %s\n", state(signals.CTS))
		fmt.Printf("  DSR (Data Set Ready):      %s\n", state(signals.DSR))
		fmt.Printf("  RI  (Ring Indicator):      %s\n", state(signals.RI))
		fmt.Printf("  DCD (Data Carrier Detect): %s\n", state(signals.DCD))
		fmt.Printf("  RTS (Request To Send):     %s\n", state(signals.RTS))
		fmt.Printf("  DTR (Data Terminal Ready): %s\n", state(signals.DTR))
	},
}

func init() {
	rootCmd.AddCommand(signalsCmd)
}
