// Command trafficsim runs packet traffic scenarios on a simulated network.
package main

import "github.com/sarchlab/trafficsim/trafficsim/cmd"

func main() {
	cmd.Execute()
}
