package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"text/tabwriter"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mattn/go-isatty"

	"github.com/keyrig/keyrig/lib/accel"
	"github.com/keyrig/keyrig/lib/hardware"
	"github.com/keyrig/keyrig/lib/hidapple"
	"github.com/keyrig/keyrig/lib/launchers"
	"github.com/keyrig/keyrig/lib/log"
	"github.com/keyrig/keyrig/lib/profiles"
	"github.com/keyrig/keyrig/models"
	"github.com/keyrig/keyrig/worker"
	"github.com/keyrig/keyrig/worker/types"
)

var Version = "0.1.0"

func buildInfo() string {
	return fmt.Sprintf("%s (%s %s %s)",
		Version, runtime.Version(), runtime.GOARCH, runtime.GOOS)
}

func usage(msg string) {
	if msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}
	fmt.Fprintln(os.Stderr, `usage: keyrig [-v] [-d] [-a <backend>] <command> [args...]

commands:
  list                      list available profiles
  show <profile>            show a profile's shortcuts
  apply [-c|-C] <profile>   apply a profile (-c force clean slate, -C never)
  diff <profile>            compare a profile with the current state
  snapshot <name> [desc]    save the current state as a profile
  export-mods <preset>      export deviations from a preset, then restore it
  reset-orphans <old> <new> reset shortcuts dropped between two profiles
  conflicts <accel>         list shortcuts bound to an accelerator
  custom list               list custom launcher shortcuts
  custom add <name> <command> <accel>
  custom rm <path>          remove a custom launcher shortcut
  setup-launchers           install default application launcher shortcuts
  hardware                  list detected keyboards`)
	os.Exit(1)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "keyrig: "+format+"\n", args...)
	os.Exit(1)
}

// getProfile loads a profile, suggesting close names on a typo.
func getProfile(svc *profiles.Service, name string) *models.Profile {
	p, err := svc.GetProfile(name)
	if err == nil {
		return p
	}
	if matches := fuzzy.RankFindFold(name, svc.ProfileNames()); len(matches) > 0 {
		sort.Sort(matches)
		die("%v (did you mean %q?)", err, matches[0].Target)
	}
	die("%v", err)
	return nil
}

func main() {
	defer log.PanicHandler()

	opts, optind, err := getopt.Getopts(os.Args, "vda:")
	if err != nil {
		usage("error: " + err.Error())
		return
	}
	desktop := ""
	debug := false
	for _, opt := range opts {
		switch opt.Option {
		case 'v':
			fmt.Println("keyrig " + buildInfo())
			return
		case 'd':
			debug = true
		case 'a':
			desktop = opt.Value
		}
	}

	switch {
	case debug:
		log.Init(os.Stderr, log.DEBUG)
	case !isatty.IsTerminal(os.Stderr.Fd()):
		log.Init(os.Stderr, log.INFO)
	}
	log.Infof("starting keyrig %s", buildInfo())

	args := os.Args[optind:]
	if len(args) == 0 {
		usage("")
		return
	}

	backend, err := worker.NewBackend(desktop)
	if err != nil {
		die("%v", err)
	}
	svc, err := profiles.NewService(backend)
	if err != nil {
		die("%v", err)
	}

	switch args[0] {
	case "list":
		cmdList(svc)
	case "show":
		if len(args) != 2 {
			usage("error: show takes a profile name")
		}
		cmdShow(svc, args[1])
	case "apply":
		cmdApply(svc, args[1:])
	case "diff":
		if len(args) != 2 {
			usage("error: diff takes a profile name")
		}
		cmdDiff(svc, args[1])
	case "snapshot":
		if len(args) < 2 {
			usage("error: snapshot takes a name")
		}
		cmdSnapshot(svc, args[1], strings.Join(args[2:], " "))
	case "export-mods":
		if len(args) != 2 {
			usage("error: export-mods takes a preset name")
		}
		cmdExportMods(svc, args[1])
	case "reset-orphans":
		if len(args) != 3 {
			usage("error: reset-orphans takes two profile names")
		}
		cmdResetOrphans(svc, args[1], args[2])
	case "conflicts":
		if len(args) != 2 {
			usage("error: conflicts takes an accelerator")
		}
		cmdConflicts(backend, args[1])
	case "custom":
		cmdCustom(backend, args[1:])
	case "setup-launchers":
		cmdSetupLaunchers(backend)
	case "hardware":
		cmdHardware()
	default:
		usage(fmt.Sprintf("error: unknown command %q", args[0]))
	}
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func cmdList(svc *profiles.Service) {
	all := svc.ListProfiles()
	if len(all) == 0 {
		fmt.Println("no profiles found")
		return
	}
	w := newTable()
	fmt.Fprintln(w, "NAME\tKIND\tSHORTCUTS\tDESCRIPTION")
	for _, p := range all {
		kind := "user"
		if p.IsPreset() {
			kind = "preset"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			p.Name, kind, len(p.Shortcuts), p.Description)
	}
	w.Flush()
}

func cmdShow(svc *profiles.Service, name string) {
	p := getProfile(svc, name)
	fmt.Printf("%s: %s\n", p.Name, p.Description)
	if p.Author != "" {
		fmt.Printf("author: %s\n", p.Author)
	}

	keys := make([]string, 0, len(p.Shortcuts))
	for k := range p.Shortcuts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := newTable()
	for _, k := range keys {
		accels := p.Shortcuts[k]
		value := "disabled"
		if len(accels) > 0 {
			value = strings.Join(accels, " ")
		}
		fmt.Fprintf(w, "%s\t%s\n", k, value)
	}
	w.Flush()

	if opts := p.XKB.Options(); len(opts) > 0 {
		fmt.Printf("xkb: %s\n", strings.Join(opts, ","))
	}
	if p.MacKeyboard != nil {
		fmt.Printf("mac keyboard: fnmode=%s\n", p.MacKeyboard.FnMode)
	}
}

func cmdApply(svc *profiles.Service, args []string) {
	opts, optind, err := getopt.Getopts(append([]string{"apply"}, args...), "cC")
	if err != nil || len(args) < optind {
		usage("error: apply [-c|-C] <profile>")
	}
	cleanSlate := profiles.CleanSlateAuto
	for _, opt := range opts {
		switch opt.Option {
		case 'c':
			cleanSlate = profiles.CleanSlateOn
		case 'C':
			cleanSlate = profiles.CleanSlateOff
		}
	}
	rest := args[optind-1:]
	if len(rest) != 1 {
		usage("error: apply [-c|-C] <profile>")
	}

	p := getProfile(svc, rest[0])
	changed, err := svc.Apply(p, cleanSlate)
	if err != nil {
		die("apply %s: %v", p.Name, err)
	}
	fmt.Printf("applied %s: %d shortcuts changed\n", p.Name, len(changed))

	// mac keyboard settings are best effort: a missing module must not
	// undo the shortcut reconciliation that already happened
	if p.MacKeyboard != nil {
		hid := hidapple.NewService()
		switch {
		case !hid.ModuleLoaded():
			log.Warnf("profile %s configures a mac keyboard but hid_apple is not loaded",
				p.Name)
		default:
			if err := hid.Apply(p.MacKeyboard, true); err != nil {
				fmt.Fprintf(os.Stderr,
					"warning: mac keyboard settings not applied: %v\n", err)
			} else {
				fmt.Println("mac keyboard settings applied")
			}
		}
	}
}

func printDeltas(diff map[string]profiles.Delta) {
	ids := make([]string, 0, len(diff))
	for id := range diff {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w := newTable()
	fmt.Fprintln(w, "SHORTCUT\tCURRENT\tEXPECTED")
	for _, id := range ids {
		d := diff[id]
		fmt.Fprintf(w, "%s\t%s\t%s\n", id,
			joinOrDisabled(d.Current), joinOrDisabled(d.Expected))
	}
	w.Flush()
}

func joinOrDisabled(accels []string) string {
	if len(accels) == 0 {
		return "disabled"
	}
	return strings.Join(accels, " ")
}

func cmdDiff(svc *profiles.Service, name string) {
	p := getProfile(svc, name)
	diff := svc.Diff(p)
	if len(diff) == 0 {
		fmt.Printf("current state matches %s\n", p.Name)
		return
	}
	printDeltas(diff)
}

func cmdSnapshot(svc *profiles.Service, name, description string) {
	p := svc.CreateFromCurrent(name, description)
	path, err := svc.SaveProfile(p)
	if err != nil {
		die("%v", err)
	}
	fmt.Printf("saved %d shortcuts to %s\n", len(p.Shortcuts), path)
}

func cmdExportMods(svc *profiles.Service, preset string) {
	path, count, err := svc.ExportAndClearModifications(preset)
	if err != nil {
		die("%v", err)
	}
	if count == 0 {
		fmt.Printf("no deviations from %s\n", preset)
		return
	}
	fmt.Printf("exported %d modifications to %s\n", count, path)
}

func cmdResetOrphans(svc *profiles.Service, oldName, newName string) {
	oldProfile := getProfile(svc, oldName)
	newProfile := getProfile(svc, newName)
	count, err := svc.ResetOrphanedShortcuts(oldProfile, newProfile)
	if err != nil {
		die("%v", err)
	}
	fmt.Printf("reset %d orphaned shortcuts\n", count)
}

func cmdConflicts(backend types.Backend, text string) {
	binding, ok := accel.Parse(text)
	if !ok {
		die("cannot parse accelerator %q", text)
	}
	conflicts := backend.FindConflicts(binding, "")
	if len(conflicts) == 0 {
		fmt.Printf("%s is unbound\n", accel.Humanize(binding))
		return
	}
	w := newTable()
	for _, s := range conflicts {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Name, accel.Label(s))
	}
	w.Flush()
}

func cmdCustom(backend types.Backend, args []string) {
	if len(args) == 0 {
		usage("error: custom list|add|rm")
	}
	switch args[0] {
	case "list":
		w := newTable()
		fmt.Fprintln(w, "PATH\tNAME\tBINDING\tCOMMAND")
		for _, cb := range backend.CustomBindings() {
			binding := cb.Binding
			if b, ok := accel.Parse(cb.Binding); ok {
				binding = accel.Humanize(b)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cb.Path, cb.Name, binding, cb.Command)
		}
		w.Flush()
	case "add":
		if len(args) != 4 {
			usage("error: custom add <name> <command> <accel>")
		}
		name, command, binding := args[1], args[2], args[3]
		if _, ok := accel.Parse(binding); !ok {
			die("cannot parse accelerator %q", binding)
		}
		if err := launchers.NewDetector().ValidateCommand(command); err != nil {
			die("%v", err)
		}
		path, err := backend.AddCustomBinding(name, command, binding)
		if err != nil {
			die("%v", err)
		}
		fmt.Printf("added %s at %s\n", name, path)
	case "rm":
		if len(args) != 2 {
			usage("error: custom rm <path>")
		}
		deleted, err := backend.DeleteCustomBinding(args[1])
		if err != nil {
			die("%v", err)
		}
		if !deleted {
			die("no custom binding at %s", args[1])
		}
		fmt.Printf("removed %s\n", args[1])
	default:
		usage(fmt.Sprintf("error: unknown custom command %q", args[0]))
	}
}

func cmdSetupLaunchers(backend types.Backend) {
	results := launchers.NewDetector().SetupDefaults(backend)
	kinds := make([]string, 0, len(results))
	for kind := range results {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	w := newTable()
	for _, kind := range kinds {
		fmt.Fprintf(w, "%s\t%s\n", kind, results[kind])
	}
	w.Flush()
}

func cmdHardware() {
	keyboards := hardware.NewDetector().ListKeyboards()
	if len(keyboards) == 0 {
		fmt.Println("no keyboards detected")
		return
	}
	w := newTable()
	fmt.Fprintln(w, "DEVICE\tNAME\tBRAND\tFLAGS")
	for _, kb := range keyboards {
		var flags []string
		if kb.IsMac {
			flags = append(flags, "mac")
		}
		if kb.IsBluetooth {
			flags = append(flags, "bluetooth")
		}
		if kb.IsInternal {
			flags = append(flags, "internal")
		}
		if kb.HasNumpad {
			flags = append(flags, "numpad")
		}
		name := kb.Name
		if kb.ModelName != "" {
			name = kb.ModelName
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			kb.Path, name, kb.BrandName, strings.Join(flags, ","))
	}
	w.Flush()

	hid := hidapple.NewService()
	if cfg := hid.CurrentConfig(); cfg != nil {
		fmt.Printf("hid_apple: fnmode=%s swap_opt_cmd=%v swap_fn_leftctrl=%v iso_layout=%v\n",
			cfg.FnMode, cfg.SwapOptCmd, cfg.SwapFnLeftCtrl, cfg.ISOLayout)
	}
}
