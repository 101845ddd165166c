package main

import (
	"fmt"
	"os"
	"strings"

	cli "github.com/spf13/pflag"

	"jarvis/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Daemon control socket")
	cli.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: jarvis-ctl [--socket path] listen | say <command text>")
		cli.PrintDefaults()
	}
	cli.Parse()

	msg, err := parseArgs(cli.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cli.Usage()
		os.Exit(2)
	}

	if err := ipc.SendCommand(*socket, msg); err != nil {
		fmt.Println("jarvis not running or refused the command:", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (ipc.ControlMessage, error) {
	if len(args) == 0 {
		return ipc.ControlMessage{}, fmt.Errorf("missing command")
	}

	switch args[0] {
	case ipc.CmdListen:
		return ipc.ControlMessage{Cmd: ipc.CmdListen}, nil
	case ipc.CmdSay:
		text := strings.TrimSpace(strings.Join(args[1:], " "))
		if text == "" {
			return ipc.ControlMessage{}, fmt.Errorf("say needs the command text")
		}
		return ipc.ControlMessage{Cmd: ipc.CmdSay, Text: text}, nil
	}
	return ipc.ControlMessage{}, fmt.Errorf("unknown command %q", args[0])
}
