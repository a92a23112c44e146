package cmd

import (
	"strings"

	"github.com/simon/vigil/internal/config"
)

// Our flags, by how they take values. Everything else goes to ssh.
var (
	boolFlags     = map[string]bool{"--list": true, "--debug": true, "--help": true, "-h": true, "--version": true}
	valueFlags    = map[string]bool{"--session": true, "--tmux": true, "--tmuxargs": true, "--output": true}
	optionalFlags = map[string]bool{"--attach": true, "--select": true, "--kill": true}
)

// splitArgs separates vigil's own flags from the arguments meant for ssh, so
// our flags may come before or after the destination and unknown flags
// reach ssh untouched. "--" ends our flags.
//
// An optional-value flag followed by a separate word takes it as NAME only
// when the word is not flag-like or host-like and a destination was already
// seen or still follows: "--attach work host" and "host --attach work"
// attach to work, "--attach host" does not. A flag left without NAME is
// passed on with the chooseInteractively value.
func splitArgs(args []string) (own, passthrough []string) {
	destSeen := false
	for i := 0; i < len(args); i++ {
		tok := args[i]
		if tok == "--" {
			passthrough = append(passthrough, args[i+1:]...)
			break
		}

		name, _, hasValue := strings.Cut(tok, "=")
		switch {
		case boolFlags[tok]:
			own = append(own, tok)
		case valueFlags[name]:
			own = append(own, tok)
			if !hasValue && i+1 < len(args) {
				i++
				own = append(own, args[i])
			}
		case optionalFlags[name]:
			switch {
			case hasValue:
				own = append(own, tok)
			case i+1 < len(args) && looksLikeName(args[i+1]) && (destSeen || hasPositional(args[i+2:])):
				i++
				own = append(own, name+"="+args[i])
			default:
				own = append(own, name+"="+chooseInteractively)
			}
		case strings.HasPrefix(tok, "-") && len(tok) > 1:
			passthrough = append(passthrough, tok)
			if config.TakesValue(tok) && i+1 < len(args) {
				i++
				passthrough = append(passthrough, args[i])
			}
		default:
			passthrough = append(passthrough, tok)
			destSeen = true
		}
	}
	return own, passthrough
}

func looksLikeName(s string) bool {
	return s != "" && !strings.HasPrefix(s, "-") && !strings.ContainsAny(s, "@:")
}

// hasPositional reports whether args still hold a destination, skipping the
// values of ssh options such as "-p 2222".
func hasPositional(args []string) bool {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			continue
		}
		if !strings.HasPrefix(a, "-") {
			return true
		}
		if config.TakesValue(a) {
			i++
		}
	}
	return false
}
