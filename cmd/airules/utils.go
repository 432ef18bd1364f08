package airules

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/airules/airules/internal/config"
	"github.com/airules/airules/internal/logging"
	"github.com/airules/airules/internal/report"
)

// settings is the merged view of flags, local and global config.
type settings struct {
	Root    string
	Mode    report.Mode
	Output  string
	Enable  string
	Disable string
	Threads int
	Timeout time.Duration
	NoColor bool
	NoCache bool
	Exclude []string
	Watch   config.WatchConfig
	Logger  logging.Logger
}

// overrides carries values given on the command line. Zero values defer
// to config files.
type overrides struct {
	Path      string
	Mode      string
	Output    string
	Enable    string
	Disable   string
	Timeout   time.Duration
	Threads   int
	NoColor   bool
	NoCache   bool
	LogLevel  string
	LogFormat string
}

// globalOverrides collects the persistent flags.
func globalOverrides(path string) overrides {
	return overrides{
		Path:      path,
		Threads:   flagThreads,
		NoColor:   flagNoColor,
		NoCache:   flagNoCache,
		LogLevel:  flagLogLevel,
		LogFormat: flagLogFormat,
	}
}

// loadConfigs returns the local and global config files for root. Missing
// files are not an error; malformed ones are.
func loadConfigs(root string) (local, global config.FileConfig, err error) {
	if global, err = config.LoadGlobal(); err != nil && !errors.Is(err, config.ErrNotFound) {
		return local, global, err
	}
	if local, err = config.LoadLocal(root); err != nil && !errors.Is(err, config.ErrNotFound) {
		return local, global, err
	}
	return local, global, nil
}

// resolve merges cli over the local config over the global config.
func resolve(cli overrides, logOut io.Writer) (settings, error) {
	path := cli.Path
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return settings{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	lcfg, gcfg, err := loadConfigs(abs)
	if err != nil {
		return settings{}, err
	}

	mode, err := report.ParseMode(pickString(cli.Mode, lcfg.Mode, gcfg.Mode))
	if err != nil {
		return settings{}, err
	}
	timeout := cli.Timeout
	if timeout == 0 {
		if s := pickString("", lcfg.Timeout, gcfg.Timeout); s != "" {
			if timeout, err = time.ParseDuration(s); err != nil {
				return settings{}, fmt.Errorf("timeout: %w", err)
			}
		}
	}
	level, err := logging.ParseLevel(pickString(cli.LogLevel, lcfg.LogLevel, gcfg.LogLevel))
	if err != nil {
		return settings{}, err
	}
	format := pickString(cli.LogFormat, lcfg.LogFormat, gcfg.LogFormat)
	if logOut == nil {
		logOut = os.Stderr
	}

	watch := gcfg.GetWatchConfig()
	if lcfg.Watch != nil {
		watch = lcfg.GetWatchConfig()
	}
	exclude := gcfg.ExcludeRules
	if lcfg.ExcludeRules != nil {
		exclude = lcfg.ExcludeRules
	}

	return settings{
		Root:    abs,
		Mode:    mode,
		Output:  pickString(cli.Output, lcfg.Output, gcfg.Output),
		Enable:  pickString(cli.Enable, lcfg.Enable, gcfg.Enable),
		Disable: pickString(cli.Disable, lcfg.Disable, gcfg.Disable),
		Threads: pickInt(cli.Threads, lcfg.Threads, gcfg.Threads),
		Timeout: timeout,
		NoColor: pickBool(cli.NoColor, lcfg.NoColor, gcfg.NoColor),
		NoCache: pickBool(cli.NoCache, lcfg.NoCache, gcfg.NoCache),
		Exclude: exclude,
		Watch:   watch,
		Logger:  logging.New(logging.Config{Level: level, Format: format, Output: logOut}),
	}, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// relTo returns path relative to root when it lies inside it.
func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}
