package main

import "github.com/LegacyCodeHQ/solls/cmd"

func main() {
	cmd.Execute()
}
