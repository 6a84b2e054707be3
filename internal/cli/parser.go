package cli

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSubcommand is returned when no subcommand is provided.
var ErrNoSubcommand = errors.New("missing subcommand: usage: attest <checkpoint|validate|verify|list> [flags] [args...]")

// ErrMissingFlagValue is returned when a flag requires a value but none is provided.
var ErrMissingFlagValue = errors.New("flag requires a value")

// Subcommand represents the CLI subcommand.
type Subcommand string

const (
	SubcommandCheckpoint Subcommand = "checkpoint"
	SubcommandValidate   Subcommand = "validate"
	SubcommandVerify     Subcommand = "verify"
	SubcommandList       Subcommand = "list"
)

// Command represents the parsed CLI input.
type Command struct {
	Subcommand Subcommand

	// checkpoint <agentType> [sessionId]
	AgentType string
	SessionID string

	// validate <checkpointId> <claimsJson>
	CheckpointID string
	ClaimsJSON   string

	// Global flags
	DataDir    string // --dir <path>
	ConfigPath string // --config <path>
	Workdir    string // --workdir <path>
	JSONOutput bool   // --json

	// verify flags
	SkipTests      bool // --skip-tests
	SkipBuild      bool // --skip-build
	SkipCheckpoint bool // --skip-checkpoint
}

// ParseArgs parses CLI arguments into a Command.
// It expects args to be os.Args[1:] (excluding the program name).
func ParseArgs(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, ErrNoSubcommand
	}

	sub := Subcommand(args[0])
	switch sub {
	case SubcommandCheckpoint, SubcommandValidate, SubcommandVerify, SubcommandList:
	default:
		return Command{}, fmt.Errorf("unknown subcommand '%s': usage: attest <checkpoint|validate|verify|list>", args[0])
	}

	cmd := Command{Subcommand: sub}

	var positional []string
	i := 1
	for i < len(args) {
		arg := args[i]

		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")

			switch flagName {
			case "dir":
				if i+1 >= len(args) {
					return Command{}, ErrMissingFlagValue
				}
				i++
				cmd.DataDir = args[i]
			case "config":
				if i+1 >= len(args) {
					return Command{}, ErrMissingFlagValue
				}
				i++
				cmd.ConfigPath = args[i]
			case "workdir":
				if i+1 >= len(args) {
					return Command{}, ErrMissingFlagValue
				}
				i++
				cmd.Workdir = args[i]
			case "json":
				cmd.JSONOutput = true
			case "skip-tests":
				cmd.SkipTests = true
			case "skip-build":
				cmd.SkipBuild = true
			case "skip-checkpoint":
				cmd.SkipCheckpoint = true
			default:
				return Command{}, fmt.Errorf("unknown flag: --%s", flagName)
			}
			i++
			continue
		}

		positional = append(positional, arg)
		i++
	}

	if err := assignPositional(&cmd, positional); err != nil {
		return Command{}, err
	}

	return cmd, nil
}

// assignPositional maps positional arguments onto the subcommand's
// expected parameters.
func assignPositional(cmd *Command, positional []string) error {
	switch cmd.Subcommand {
	case SubcommandCheckpoint:
		if len(positional) < 1 {
			return errors.New("usage: attest checkpoint <agentType> [sessionId]")
		}
		cmd.AgentType = positional[0]
		if len(positional) > 1 {
			cmd.SessionID = positional[1]
		}
	case SubcommandValidate:
		if len(positional) < 2 {
			return errors.New("usage: attest validate <checkpointId> <claimsJson>")
		}
		cmd.CheckpointID = positional[0]
		cmd.ClaimsJSON = positional[1]
	case SubcommandVerify:
		if len(positional) < 1 {
			return errors.New("usage: attest verify <sessionId> [agentType] [--skip-tests] [--skip-build] [--skip-checkpoint]")
		}
		cmd.SessionID = positional[0]
		if len(positional) > 1 {
			cmd.AgentType = positional[1]
		}
	case SubcommandList:
		// No positional arguments.
	}
	return nil
}
