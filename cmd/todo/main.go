// Command todo manages tasks on a todoboard backend from the terminal.
package main

import "os"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
