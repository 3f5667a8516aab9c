// Package config provides a go-simpler.org/env configuration table and helpers
// for listing its environment key/value pairs.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"go-simpler.org/env"
	lol "lol.mleku.dev"
	"lol.mleku.dev/chk"
	"nostrd.dev/pkg/version"
)

// C holds application configuration settings loaded from environment
// variables and default values: the ambient process-level knobs of
// spec.md §6 (port, database, log-level, the NIP-11 seed file) plus the
// runtime policy limits the protocol layer enforces directly.
type C struct {
	AppName       string `env:"NOSTRD_APP_NAME" usage:"set a name to display on information about the relay" default:"nostrd"`
	DataDir       string `env:"NOSTRD_DATA_DIR" usage:"storage location for the event store" default:"~/.local/share/nostrd"`
	Listen        string `env:"NOSTRD_LISTEN" default:"0.0.0.0" usage:"network listen address"`
	Port          int    `env:"NOSTRD_PORT" default:"3334" usage:"port to listen on"`
	HealthPort    int    `env:"NOSTRD_HEALTH_PORT" default:"0" usage:"optional health check HTTP port; 0 disables"`
	Database      string `env:"NOSTRD_DATABASE" usage:"event store path, or :memory: for an ephemeral store" default:""`
	RelayInfoFile string `env:"NOSTRD_RELAY_INFO_FILE" usage:"TOML file seeding the NIP-11 document's name, description, pubkey, contact and payment_required" default:""`
	LogLevel      string `env:"NOSTRD_LOG_LEVEL" default:"info" usage:"relay log level: fatal error warn info debug trace"`
	LogToStdout   bool   `env:"NOSTRD_LOG_TO_STDOUT" default:"false" usage:"log to stdout instead of stderr"`
	Pprof         string `env:"NOSTRD_PPROF" usage:"enable pprof in modes: cpu,memory,allocation"`

	MaxMessageLength    int   `env:"NOSTRD_MAX_MESSAGE_LENGTH" default:"131072" usage:"maximum accepted inbound frame size in bytes"`
	MaxSubscriptions    int   `env:"NOSTRD_MAX_SUBSCRIPTIONS" default:"20" usage:"maximum open subscriptions per connection"`
	MaxFilters          int   `env:"NOSTRD_MAX_FILTERS" default:"10" usage:"maximum filters per REQ/COUNT"`
	MaxLimit            int   `env:"NOSTRD_MAX_LIMIT" default:"500" usage:"maximum events returned per filter"`
	MaxSubidLength      int   `env:"NOSTRD_MAX_SUBID_LENGTH" default:"64" usage:"maximum subscription id length"`
	MaxTags             int   `env:"NOSTRD_MAX_TAGS" default:"2000" usage:"maximum tags per event"`
	MinPowDifficulty    int   `env:"NOSTRD_MIN_POW_DIFFICULTY" default:"0" usage:"minimum accepted proof-of-work difficulty"`
	AuthRequired        bool  `env:"NOSTRD_AUTH_REQUIRED" default:"false" usage:"require AUTH before serving any request"`
	RestrictedWrites    bool  `env:"NOSTRD_RESTRICTED_WRITES" default:"false" usage:"require AUTH before accepting EVENT"`
	CreatedAtLowerLimit int64 `env:"NOSTRD_CREATED_AT_LOWER_LIMIT" default:"94608000" usage:"seconds an event's created_at may be behind wall clock"`
	CreatedAtUpperLimit int64 `env:"NOSTRD_CREATED_AT_UPPER_LIMIT" default:"900" usage:"seconds an event's created_at may be ahead of wall clock"`
}

// New creates and initializes a new configuration object for the relay
// application
//
// # Return Values
//
//   - cfg: A pointer to the initialized configuration struct containing default
//     or environment-provided values
//
//   - err: nil on return; when loading the environment fails, the help text
//     is printed and the process exits instead
//
// # Expected Behaviour:
//
// Initializes a new configuration instance from environment variables and
// struct-tag defaults (no .env file is read), fills in the data directory,
// database path and relay-info file path when unset, handles the env and help
// subcommands, and sets logging levels based on configuration values
func New() (cfg *C, err error) {
	cfg = &C{}
	if err = env.Load(cfg, &env.Options{SliceSep: ","}); chk.T(err) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n\n", err)
		}
		PrintHelp(cfg, os.Stderr)
		os.Exit(0)
	}
	if cfg.DataDir == "" || strings.Contains(cfg.DataDir, "~") {
		cfg.DataDir = filepath.Join(xdg.DataHome, cfg.AppName)
	}
	if cfg.Database == "" {
		cfg.Database = filepath.Join(cfg.DataDir, "events.db")
	}
	if cfg.RelayInfoFile == "" {
		cfg.RelayInfoFile = filepath.Join(cfg.DataDir, "relay-info.toml")
	}
	if GetEnv() {
		PrintEnv(cfg, os.Stdout)
		os.Exit(0)
	}
	if HelpRequested() {
		PrintHelp(cfg, os.Stderr)
		os.Exit(0)
	}
	if cfg.LogToStdout {
		lol.Writer = os.Stdout
	}
	lol.SetLogLevel(cfg.LogLevel)
	return
}

// HelpRequested determines if the command line arguments indicate a request for help
//
// # Return Values
//
//   - help: A boolean value indicating true if a help flag was detected in the
//     command line arguments, false otherwise
//
// # Expected Behaviour
//
// The function checks the first command line argument for common help flags and
// returns true if any of them are present. Returns false if no help flag is found
func HelpRequested() (help bool) {
	if len(os.Args) > 1 {
		switch strings.ToLower(os.Args[1]) {
		case "help", "-h", "--h", "-help", "--help", "?":
			help = true
		}
	}
	return
}

// GetEnv checks if the first command line argument is "env" and returns
// whether the environment configuration should be printed.
//
// # Return Values
//
//   - requested: A boolean indicating true if the 'env' argument was
//     provided, false otherwise.
//
// # Expected Behaviour
//
// The function returns true when the first command line argument is "env"
// (case-insensitive), signalling that the environment configuration should be
// printed. Otherwise, it returns false.
func GetEnv() (requested bool) {
	if len(os.Args) > 1 {
		switch strings.ToLower(os.Args[1]) {
		case "env":
			requested = true
		}
	}
	return
}

// KV is a key/value pair.
type KV struct{ Key, Value string }

// KVSlice is a sortable slice of key/value pairs, designed for managing
// configuration data and enabling operations like merging and sorting based on
// keys.
type KVSlice []KV

func (kv KVSlice) Len() int           { return len(kv) }
func (kv KVSlice) Less(i, j int) bool { return kv[i].Key < kv[j].Key }
func (kv KVSlice) Swap(i, j int)      { kv[i], kv[j] = kv[j], kv[i] }

// Compose merges two KVSlice instances into a new slice where key-value pairs
// from the second slice override any duplicate keys from the first slice.
//
// # Parameters
//
//   - kv2: The second KVSlice whose entries will be merged with the receiver.
//
// # Return Values
//
//   - out: A new KVSlice containing all entries from both slices, with keys
//     from kv2 taking precedence over keys from the receiver.
//
// # Expected Behaviour
//
// The method returns a new KVSlice that combines the contents of the receiver
// and kv2. If any key exists in both slices, the value from kv2 is used. The
// resulting slice remains sorted by keys as per the KVSlice implementation.
func (kv KVSlice) Compose(kv2 KVSlice) (out KVSlice) {
	// duplicate the initial KVSlice
	for _, p := range kv {
		out = append(out, p)
	}
out:
	for i, p := range kv2 {
		for j, q := range out {
			// if the key is repeated, replace the value
			if p.Key == q.Key {
				out[j].Value = kv2[i].Value
				continue out
			}
		}
		out = append(out, p)
	}
	return
}

// EnvKV generates key/value pairs from a configuration object's struct tags
//
// # Parameters
//
//   - cfg: A configuration object whose struct fields are processed for env tags
//
// # Return Values
//
//   - m: A KVSlice containing key/value pairs derived from the config's env tags
//
// # Expected Behaviour
//
// Processes each field of the config object, extracting values tagged with
// "env" and converting them to strings. Skips fields without an "env" tag.
// Handles various value types including strings, integers, booleans, durations,
// and string slices by joining elements with commas.
func EnvKV(cfg any) (m KVSlice) {
	t := reflect.TypeOf(cfg)
	for i := 0; i < t.NumField(); i++ {
		k := t.Field(i).Tag.Get("env")
		v := reflect.ValueOf(cfg).Field(i).Interface()
		var val string
		switch v.(type) {
		case string:
			val = v.(string)
		case int, int64, bool, time.Duration:
			val = fmt.Sprint(v)
		case []string:
			arr := v.([]string)
			if len(arr) > 0 {
				val = strings.Join(arr, ",")
			}
		}
		// this can happen with embedded structs
		if k == "" {
			continue
		}
		m = append(m, KV{k, val})
	}
	return
}

// PrintEnv outputs sorted environment key/value pairs from a configuration object
// to the provided writer
//
// # Parameters
//
//   - cfg: Pointer to the configuration object containing env tags
//
//   - printer: Destination for the output, typically an io.Writer implementation
//
// # Expected Behaviour
//
// Outputs each environment variable derived from the config's struct tags in
// sorted order, formatted as "key=value\n" to the specified writer
func PrintEnv(cfg *C, printer io.Writer) {
	kvs := EnvKV(*cfg)
	sort.Sort(kvs)
	for _, v := range kvs {
		_, _ = fmt.Fprintf(printer, "%s=%s\n", v.Key, v.Value)
	}
}

// PrintHelp prints help information including application version, environment
// variable configuration, and details about .env file handling to the provided
// writer
//
// # Parameters
//
//   - cfg: Configuration object containing the app name and current values
//
//   - printer: Output destination for the help text
//
// # Expected Behaviour
//
// Prints application name and version, a usage line for the env and help
// subcommands, the environment variables that configure the relay, and the
// current configuration values using PrintEnv. Outputs all information to the
// specified writer
func PrintHelp(cfg *C, printer io.Writer) {
	_, _ = fmt.Fprintf(
		printer,
		"%s %s\n\n", cfg.AppName, version.V,
	)
	_, _ = fmt.Fprintf(
		printer,
		`Usage: %s [env|help]

- env: print environment variables configuring %s
- help: print this help text

`,
		cfg.AppName, cfg.AppName,
	)
	_, _ = fmt.Fprintf(
		printer,
		"Environment variables that configure %s:\n\n", cfg.AppName,
	)
	env.Usage(cfg, printer, &env.Options{SliceSep: ","})
	fmt.Fprintf(printer, "\ncurrent configuration:\n\n")
	PrintEnv(cfg, printer)
	fmt.Fprintln(printer)
	return
}
