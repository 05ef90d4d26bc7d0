package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

const (
	EnvConfigFile = "PNL_CONFIG"
	EnvLedgerFile = "PNL_LEDGER_FILE"
	EnvStore      = "PNL_STORE"
	EnvCurrency   = "PNL_CURRENCY"
)

// builtins are registered by the main package.
var builtins = map[string]bool{"help": true, "flags": true, "commands": true}

// IsCommand reports whether name is a pnl subcommand.
func IsCommand(name string) bool {
	if builtins[name] {
		return true
	}
	for _, e := range commands() {
		if e.cmd.Name() == name {
			return true
		}
	}
	return false
}

// RunExtension attempts to find and execute an external pnl-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "pnl-" + subcommand

	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr

	// Pass global flags as environment variables
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, EnvConfigFile+"="+*configFile)
	cmd.Env = append(cmd.Env, EnvLedgerFile+"="+*ledgerFile)
	cmd.Env = append(cmd.Env, EnvStore+"="+*storePath)
	cmd.Env = append(cmd.Env, EnvCurrency+"="+*currency)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}
