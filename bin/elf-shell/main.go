package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/pattyshack/elfhdr/config"
)

type command struct {
	name        string
	description string
	run         func(*session, []string) error
}

var (
	commands = []command{
		{
			name:        "open",
			description: "open <file>: inspect a new file",
			run:         openFile,
		},
		{
			name:        "header",
			description: "print the file header",
			run:         printHeader,
		},
		{
			name:        "programs",
			description: "programs [idx]: print program header entries",
			run:         printProgramHeaders,
		},
		{
			name:        "sections",
			description: "sections [idx]: print section header entries",
			run:         printSectionHeaders,
		},
		{
			name:        "report",
			description: "print the full report",
			run:         printReport,
		},
		{
			name:        "name",
			description: "name <id>: look up a resource name",
			run:         lookupName,
		},
	}
)

func init() {
	// printHelp refers to commands.
	commands = append(
		commands,
		command{
			name:        "help",
			description: "list commands",
			run:         printHelp,
		})
}

func newCompleter() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{}
	for _, cmd := range commands {
		items = append(items, readline.PcItem(cmd.name))
	}
	items = append(items, readline.PcItem("quit"))

	return readline.NewPrefixCompleter(items...)
}

func main() {
	configPath := ""
	flag.StringVar(&configPath, "config", "", "yaml config file")
	flag.Parse()
	args := flag.Args()

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			panic(err)
		}
	}

	sess := newSession(cfg.NewParser())
	defer sess.Close()

	if len(args) > 1 {
		panic("unexpected arguments")
	} else if len(args) == 1 {
		err := openFile(sess, args)
		if err != nil {
			panic(err)
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "elf > ",
		AutoComplete: newCompleter(),
	})
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	lastLine := ""
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				break
			}
			panic(err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			line = lastLine
		}
		lastLine = line

		if line == "" {
			continue
		}

		args := strings.Fields(line)
		if args[0] == "quit" || args[0] == "exit" {
			break
		}

		found := false
		for _, cmd := range commands {
			if strings.HasPrefix(cmd.name, args[0]) {
				found = true
				err := cmd.run(sess, args[1:])
				if err != nil {
					fmt.Println("error:", err)
				}
				break
			}
		}

		if !found {
			fmt.Println("invalid command:", args[0])
		}
	}
}
