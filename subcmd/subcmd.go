// Package subcmd is a flag.FlagSet with usage text for one backlog
// subcommand and its positional argument.
package subcmd

import (
	"flag"
	"fmt"
	"strconv"
)

func New(name, doc string) *Subcommand {
	sc := &Subcommand{
		FlagSet: flag.NewFlagSet(name, flag.ContinueOnError),
	}
	sc.FlagSet.Usage = func() {
		w := sc.FlagSet.Output()
		argSuffix := ""
		if sc.arg != nil {
			argSuffix = fmt.Sprintf(" <%s>", sc.arg.name)
			if sc.arg.repeated {
				argSuffix += "..."
			}
		}
		fmt.Fprint(w, "\n"+doc+"\n\n")
		fmt.Fprintf(w, "  backlog %s [flags]%s\n\n", name, argSuffix)
		fmt.Fprintf(w, "flags:\n")
		sc.FlagSet.PrintDefaults()
		if sc.arg != nil {
			fmt.Fprintf(w, "  <%s> %s\n", sc.arg.name, sc.arg.typename)
			fmt.Fprintf(w, "  \t%s\n", sc.arg.usage)
		}
	}
	return sc
}

type Subcommand struct {
	*flag.FlagSet
	arg *arg
}

type arg struct {
	name     string
	typename string
	usage    string

	required bool
	repeated bool
}

// SetArg documents an optional positional argument.
func (sc *Subcommand) SetArg(name, typename, usage string) *Subcommand {
	sc.arg = &arg{name: name, typename: typename, usage: usage}
	return sc
}

// RequireArg documents a positional argument that Parse insists on. If
// repeated, it may be given more than once.
func (sc *Subcommand) RequireArg(name, typename, usage string, repeated bool) *Subcommand {
	sc.arg = &arg{name: name, typename: typename, usage: usage, required: true, repeated: repeated}
	return sc
}

func (sc *Subcommand) Parse(args []string) error {
	if err := sc.FlagSet.Parse(args); err != nil {
		return err
	}
	if sc.arg != nil && sc.arg.required && sc.NArg() == 0 {
		sc.Usage()
		return fmt.Errorf("missing <%s>", sc.arg.name)
	}
	return nil
}

// IDs parses every positional argument as a row id.
func (sc *Subcommand) IDs() ([]int64, error) {
	ids := make([]int64, 0, sc.NArg())
	for _, s := range sc.Args() {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id '%s'", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
