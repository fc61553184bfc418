// Package serial provides a small, idiomatic Go library for raw serial
// port access on Linux.
//
// Ports are opened with functional options and configured for raw binary
// I/O: no line discipline, no echo, no signal generation. Reads block
// until at least one byte is available (VMIN=1), which pairs with
// select-based readiness multiplexing through Port.Fd().
//
// # Basic Usage
//
// Open a serial port with default configuration (115200 8N1, no flow
// control):
//
//	port, err := serial.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	n, err := port.Write([]byte("Hello"))
//	buffer := make([]byte, 256)
//	n, err = port.Read(buffer)
//
// # Configuration Options
//
// Use functional options for custom configuration:
//
//	port, err := serial.Open("/dev/ttyUSB0",
//	    serial.WithBaudRate(9600),
//	    serial.WithDataBits(7),
//	    serial.WithParity(serial.ParityEven),
//	    serial.WithFlowControl(serial.FlowControlRTSCTS),
//	)
//
// Baud rates outside the standard termios set are applied through the
// Linux BOTHER arbitrary-speed interface.
//
// # Port Discovery
//
// List available serial ports:
//
//	ports, err := serial.ListPorts()
//	for _, portPath := range ports {
//	    fmt.Println(portPath)
//	}
package serial
