package main

import (
	"bvvassist-backend/cmd/bvv-cli/commands"
	"bvvassist-backend/lib/util/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
