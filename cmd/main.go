// cmd/main.go
package main

import cmd "github.com/mwiater/benchrunner/cmd/benchrunner"

// main starts the benchrunner CLI by delegating to the cobra root command
// defined in the benchrunner package.
func main() {
	cmd.Execute()
}
