// Package flagx lets independent configuration layers pick their own flags
// out of os.Args without tripping over flags owned by someone else.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// flagName strips one or two leading dashes and any "=value" suffix.
func flagName(arg string) (name string, hasValue bool) {
	if !strings.HasPrefix(arg, "-") || arg == "-" || arg == "--" {
		return "", false
	}
	name = strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	if i := strings.IndexByte(name, '='); i >= 0 {
		return name[:i], true
	}
	return name, false
}

// FilterArgs returns the subset of args that belong to the named flags,
// keeping their values. Names are given without dashes; "-name" and
// "--name" are treated alike, as are "-name value" and "-name=value".
// Flags listed in boolNames never consume the following argument.
//
// The result is never nil.
func FilterArgs(args []string, names []string, boolNames ...string) []string {
	allowed := make(map[string]bool, len(names)+len(boolNames))
	for _, n := range names {
		allowed[n] = false
	}
	for _, n := range boolNames {
		allowed[n] = true
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, inline := flagName(args[i])
		isBool, ok := allowed[name]
		if name == "" || !ok {
			continue
		}

		filtered = append(filtered, args[i])
		if inline || isBool {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFilePath returns the value of -c/-config from os.Args, or "".
func ConfigFilePath() string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(os.Args[1:], []string{"c", "config"}))

	return path
}
