/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package main

import "github.com/Alexander3XL/ssterm/cmd"

func main() {
	cmd.Execute()
}
