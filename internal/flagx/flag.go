// Package flagx lets several flag sets share os.Args: the config file flag
// and the per-binary settings flags are parsed separately.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// flagName returns the flag name of arg with one or two leading dashes
// removed, and the inline value when arg has the -name=value form.
func flagName(arg string) (name, value string, inline, ok bool) {
	if len(arg) < 2 || arg[0] != '-' || arg == "--" {
		return "", "", false, false
	}
	name = strings.TrimPrefix(arg[1:], "-")
	if name == "" || name[0] == '-' {
		return "", "", false, false
	}
	name, value, inline = strings.Cut(name, "=")
	return name, value, inline, true
}

// FilterArgs keeps the arguments of args that belong to the named flags,
// together with their values. Names are given without dashes; -name and
// --name both match, with the value either inline (-name=v) or as the next
// argument. The next argument is taken as a value only if it does not start
// with '-'. Scanning stops at "--".
func FilterArgs(args []string, names ...string) []string {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			break
		}
		name, _, inline, ok := flagName(args[i])
		if !ok || !wanted[name] {
			continue
		}
		out = append(out, args[i])
		if !inline && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigFileFlag returns the path given with -c or -config, or "".
func ConfigFileFlag() string {
	return configFileFlag(os.Args[1:])
}

func configFileFlag(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file (.json, .yaml)")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, "c", "config"))

	return path
}
