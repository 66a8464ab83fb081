// Command eesim runs emulated-EEPROM jobs against a simulated flash
// controller.
package main

import "github.com/sarchlab/flexee/eesim/cmd"

func main() {
	cmd.Execute()
}
