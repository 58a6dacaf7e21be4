// Package cli provides the cobra command tree for railkm.
//
// Commands talk to the core through driving ports held in package
// variables. The binary wires them lazily through a BootstrapFunc so that
// commands which never touch the index (version, help, config) start
// without credentials. Tests inject services directly with SetServices.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
	"github.com/custodia-labs/railkm/internal/core/ports/driving"
	"github.com/custodia-labs/railkm/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// annotationServices tells the root which services a command needs.
const annotationServices = "railkm/services"

// Values of annotationServices. Commands without the annotation need the engine.
const (
	needsNothing   = "none"
	needsSettings  = "settings"
	needsProviders = "providers"
)

// Options carries the persistent flags into the bootstrap.
type Options struct {
	ConfigDir string
	CorpusDir string
	IndexDir  string
	InMemory  bool
	Verbose   bool

	// Validate pings both providers before returning.
	Validate bool

	// SettingsOnly loads settings without creating providers or opening the index.
	SettingsOnly bool
}

// Services is the wired application handed to the commands.
type Services struct {
	Query      driving.QueryService
	Index      driving.IndexService
	Evaluation driving.EvaluationService
	Watcher    driven.CorpusWatcher

	Settings     *domain.Settings
	SettingsPath string
	CorpusDir    string

	// Check pings the configured providers.
	Check func(ctx context.Context) error

	// SaveSettings writes settings to the config file.
	SaveSettings func(settings domain.Settings) error

	// Close releases the index and the provider clients.
	Close func() error
}

// BootstrapFunc builds the services for a command invocation.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

var (
	queryService      driving.QueryService
	indexService      driving.IndexService
	evaluationService driving.EvaluationService
	corpusWatcher     driven.CorpusWatcher

	appSettings   *domain.Settings
	settingsPath  string
	corpusDir     string
	checkProvider func(ctx context.Context) error
	saveSettings  func(settings domain.Settings) error
	closeServices func() error

	bootstrap BootstrapFunc
	options   Options
	wired     bool
)

var (
	listFlag   bool
	deleteFlag string
	resetFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "railkm",
	Short: "Question answering over railway regulations",
	Long: `railkm indexes a corpus of railway regulation documents (PDF and text)
and answers questions about them with citations to the source passages.

Management flags:
  --list             list indexed documents with chunk counts
  --delete <file>    remove one document from the index
  --reset            wipe the index`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
	RunE:              runRoot,
}

func init() {
	rootCmd.Flags().BoolVar(&listFlag, "list", false, "list indexed documents")
	rootCmd.Flags().StringVar(&deleteFlag, "delete", "", "remove a document from the index")
	rootCmd.Flags().BoolVar(&resetFlag, "reset", false, "wipe the index")
	rootCmd.MarkFlagsMutuallyExclusive("list", "delete", "reset")

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&options.Verbose, "verbose", "v", false, "print pipeline progress to stderr")
	pf.StringVar(&options.ConfigDir, "config-dir", "", "configuration directory (default ~/.railkm)")
	pf.StringVar(&options.CorpusDir, "corpus", "", "corpus directory (overrides config)")
	pf.StringVar(&options.IndexDir, "index-dir", "", "index directory (overrides config)")
	pf.BoolVar(&options.InMemory, "in-memory", false, "keep the index in memory only")
}

// SetBootstrap sets the function that wires services on first use.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices injects already wired services.
func SetServices(s *Services) {
	if s == nil {
		queryService, indexService, evaluationService, corpusWatcher = nil, nil, nil, nil
		appSettings, settingsPath, corpusDir = nil, "", ""
		checkProvider, saveSettings, closeServices = nil, nil, nil
		wired = false
		return
	}
	queryService = s.Query
	indexService = s.Index
	evaluationService = s.Evaluation
	corpusWatcher = s.Watcher
	appSettings = s.Settings
	settingsPath = s.SettingsPath
	corpusDir = s.CorpusDir
	checkProvider = s.Check
	saveSettings = s.SaveSettings
	closeServices = s.Close
	wired = true
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	defer func() {
		if closeServices != nil {
			if err := closeServices(); err != nil {
				logger.Warn("Closing services: %v", err)
			}
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// prepare configures logging and wires services for the command being run.
func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(options.Verbose)

	need := servicesNeeded(cmd)
	if need == needsNothing || wired || bootstrap == nil {
		return nil
	}

	opts := options
	opts.Validate = need == needsProviders
	opts.SettingsOnly = need == needsSettings

	s, err := bootstrap(cmd.Context(), opts)
	if err != nil {
		return err
	}
	SetServices(s)
	return nil
}

// servicesNeeded reads the command's annotation. Help, completion and a
// bare root invocation need nothing.
func servicesNeeded(cmd *cobra.Command) string {
	switch {
	case cmd.Name() == "help":
		return needsNothing
	case cmd.HasParent() && cmd.Parent().Name() == "completion":
		return needsNothing
	case !cmd.HasParent() && !listFlag && deleteFlag == "" && !resetFlag:
		return needsNothing
	}
	return cmd.Annotations[annotationServices]
}

func runRoot(cmd *cobra.Command, _ []string) error {
	switch {
	case listFlag:
		return runList(cmd)
	case deleteFlag != "":
		return runDelete(cmd, deleteFlag)
	case resetFlag:
		return runReset(cmd)
	default:
		return cmd.Help()
	}
}

func runList(cmd *cobra.Command) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	counts, err := indexService.ListIndexedFiles(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(counts) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	cmd.Printf("%d documents indexed:\n", len(counts))
	for _, name := range domain.SortedKeys(counts) {
		cmd.Printf("  %s (%d chunks)\n", name, counts[name])
	}
	return nil
}

func runDelete(cmd *cobra.Command, filename string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	n, err := indexService.DeleteDocument(cmd.Context(), filename)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("document %s is not indexed", filename)
	}
	if err != nil {
		return fmt.Errorf("deleting %s: %w", filename, err)
	}

	cmd.Printf("Deleted %s from the index (%d chunks).\n", filename, n)
	return nil
}

func runReset(cmd *cobra.Command) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	if err := indexService.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("resetting index: %w", err)
	}

	cmd.Println("Index reset.")
	return nil
}
