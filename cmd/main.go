// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/term"

	"cai-scan/internal/config"
	"cai-scan/internal/core"
	"cai-scan/internal/formatters"
	"cai-scan/internal/help"
	"cai-scan/internal/store"
	"cai-scan/internal/version"
	"cai-scan/internal/web"

	_ "cai-scan/internal/formatters/csv"
	_ "cai-scan/internal/formatters/json"
	_ "cai-scan/internal/formatters/text"
	_ "cai-scan/internal/formatters/yaml"
)

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string) *config.Config {
	// If config file is not specified, try to find one in standard locations
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	// Load configuration (will use defaults if file not found)
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg, _ = config.LoadConfig("") // Load default config
	}
	return cfg
}

// configFlags holds command line flag values
type configFlags struct {
	outputFormat     string
	confidenceLevels string
	verbose          bool
	debug            bool
	noColor          bool
	recursive        bool
	showSnippets     bool
	enableStore      bool
	storeDir         string
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	format           string
	confidenceLevels string
	verbose          bool
	debug            bool
	noColor          bool
	recursive        bool
	showSnippets     bool
	enableStore      bool
	storeDir         string
}

// resolveConfiguration resolves final configuration values from config file, profile, and command line flags
func resolveConfiguration(cfg *config.Config, activeProfile *config.Profile, flags *configFlags) *finalConfiguration {
	final := &finalConfiguration{}

	// Format
	final.format = "text" // default fallback
	if cfg != nil && cfg.Defaults.Format != "" {
		final.format = cfg.Defaults.Format
	}
	if activeProfile != nil && activeProfile.Format != "" {
		final.format = activeProfile.Format
	}
	if isFlagSet("format") && flags.outputFormat != "" {
		final.format = flags.outputFormat
	}

	// Confidence levels
	final.confidenceLevels = "all" // default fallback
	if cfg != nil && cfg.Defaults.ConfidenceLevels != "" {
		final.confidenceLevels = cfg.Defaults.ConfidenceLevels
	}
	if activeProfile != nil && activeProfile.ConfidenceLevels != "" {
		final.confidenceLevels = activeProfile.ConfidenceLevels
	}
	if isFlagSet("confidence") && flags.confidenceLevels != "" {
		final.confidenceLevels = flags.confidenceLevels
	}

	// Verbose
	final.verbose = false // default fallback
	if cfg != nil {
		final.verbose = cfg.Defaults.Verbose
	}
	if activeProfile != nil {
		final.verbose = activeProfile.Verbose
	}
	if isFlagSet("verbose") {
		final.verbose = flags.verbose
	}

	// Debug
	final.debug = false // default fallback
	if cfg != nil {
		final.debug = cfg.Defaults.Debug
	}
	if activeProfile != nil {
		final.debug = activeProfile.Debug
	}
	if isFlagSet("debug") {
		final.debug = flags.debug
	}

	// No color
	final.noColor = false // default fallback
	if cfg != nil {
		final.noColor = cfg.Defaults.NoColor
	}
	if activeProfile != nil {
		final.noColor = activeProfile.NoColor
	}
	if isFlagSet("no-color") {
		final.noColor = flags.noColor
	}

	// Recursive
	final.recursive = false // default fallback
	if cfg != nil {
		final.recursive = cfg.Defaults.Recursive
	}
	if activeProfile != nil {
		final.recursive = activeProfile.Recursive
	}
	if isFlagSet("recursive") {
		final.recursive = flags.recursive
	}

	// Evidence snippets
	final.showSnippets = false // default fallback
	if isFlagSet("show-snippets") {
		final.showSnippets = flags.showSnippets
	}

	// Result storage
	final.enableStore = false // default fallback
	final.storeDir = "./cai-data"
	if cfg != nil {
		final.enableStore = cfg.Storage.Enabled
		if cfg.Storage.Dir != "" {
			final.storeDir = cfg.Storage.Dir
		}
	}
	if isFlagSet("store") {
		final.enableStore = flags.enableStore
	}
	if isFlagSet("store-dir") && flags.storeDir != "" {
		final.storeDir = flags.storeDir
		final.enableStore = true
	}

	return final
}

// handleProfiles lists or selects a configuration profile
func handleProfiles(cfg *config.Config, listProfiles bool, profileName string, configFile string) *config.Profile {
	if listProfiles {
		if cfg == nil || len(cfg.Profiles) == 0 {
			fmt.Println("No profiles available")
			if configFile == "" {
				fmt.Println("Specify a config file with --config to define profiles")
			}
			os.Exit(0)
		}
		fmt.Println("Available profiles:")
		for _, name := range cfg.ListProfiles() {
			fmt.Printf("  %s\n", name)
		}
		os.Exit(0)
	}

	if profileName == "" {
		return nil
	}

	profile := cfg.GetProfile(profileName)
	if profile == nil {
		fmt.Fprintf(os.Stderr, "Error: Profile '%s' not found\n", profileName)
		fmt.Fprintf(os.Stderr, "Use --list-profiles to see available profiles\n")
		os.Exit(1)
	}
	return profile
}

func main() {
	inputFile := flag.String("file", "", "Path to the input file or directory of notices (PDF or text)")
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	profileName := flag.String("profile", "", "Profile name to use from config file")
	listProfiles := flag.Bool("list-profiles", false, "List available profiles in config file")
	outputFormat := flag.String("format", "", "Output format: text, json, csv, yaml (default: text)")
	confidenceLevels := flag.String("confidence", "", "Confidence levels to display: high, medium, low, or combinations like 'high,medium'")
	verbose := flag.Bool("verbose", false, "Display detailed information for each extracted field")
	debug := flag.Bool("debug", false, "Enable debug logging to show preprocessing and extraction flow")
	outputFile := flag.String("output", "", "Path to output file (if not specified, output to stdout)")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	showHelp := flag.Bool("help", false, "Show help information")
	showVersion := flag.Bool("version", false, "Show version information")
	showSnippets := flag.Bool("show-snippets", false, "Include evidence snippets for each extracted field")
	recursive := flag.Bool("recursive", false, "Recursively process directories")
	enableStore := flag.Bool("store", false, "Persist extraction results to the local document store")
	storeDir := flag.String("store-dir", "", "Directory for the document store (default: ./cai-data)")
	quiet := flag.Bool("quiet", false, "Suppress progress output (useful for scripts and CI/CD)")

	// Web server mode flags
	webMode := flag.Bool("web", false, "Start web server mode instead of CLI extraction")
	webPort := flag.String("port", "8080", "Port for web server (default: 8080)")

	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	if *showHelp {
		helpSystem := help.NewSystem(*noColor)
		args := flag.Args()
		switch {
		case len(args) == 0:
			helpSystem.ShowGeneralHelp()
		case args[0] == "fields":
			helpSystem.ShowFieldsHelp()
		default:
			if !helpSystem.ShowFieldHelp(args[0]) {
				os.Exit(1)
			}
		}
		return
	}

	// Handle web mode early - validate flags and start web server if requested
	if *webMode {
		if err := handleWebMode(*webPort, flag.Args(), *inputFile, *configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		// Web server will run indefinitely, so this should not be reached
		return
	}

	// Auto-detect non-interactive environment
	isInteractive := isTerminal(os.Stderr)
	if !isInteractive || *quiet || os.Getenv("CI") != "" {
		*noColor = true
	}

	// Load configuration
	cfg := loadConfiguration(*configFile)

	// Handle profile operations
	activeProfile := handleProfiles(cfg, *listProfiles, *profileName, *configFile)

	// Resolve final configuration values
	finalConfig := resolveConfiguration(cfg, activeProfile, &configFlags{
		outputFormat:     *outputFormat,
		confidenceLevels: *confidenceLevels,
		verbose:          *verbose,
		debug:            *debug,
		noColor:          *noColor,
		recursive:        *recursive,
		showSnippets:     *showSnippets,
		enableStore:      *enableStore,
		storeDir:         *storeDir,
	})

	if *inputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: No input file specified\n")
		fmt.Fprintf(os.Stderr, "Usage: cai-scan --file <path> [options]\n")
		fmt.Fprintf(os.Stderr, "Use --help for more information\n")
		os.Exit(1)
	}

	// Validate output format before doing any work
	formatter, exists := formatters.Get(finalConfig.format)
	if !exists {
		fmt.Fprintf(os.Stderr, "Error: Unsupported output format '%s'\n", finalConfig.format)
		fmt.Fprintf(os.Stderr, "Available formats: %s\n", strings.Join(formatters.List(), ", "))
		os.Exit(1)
	}

	// Open the document store when persistence is enabled
	var documentStore *store.Store
	if finalConfig.enableStore {
		var err error
		documentStore, err = store.Open(finalConfig.storeDir, cfg.Storage.KeepPDFs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to open document store: %v\n", err)
			fmt.Fprintf(os.Stderr, "Check that %s is writable\n", finalConfig.storeDir)
			os.Exit(1)
		}
		defer documentStore.Close()
	}

	// Gather the files to process
	files, err := core.CollectFiles(*inputFile, finalConfig.recursive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No processable files found in %s\n", *inputFile)
		os.Exit(1)
	}

	// Extract each file
	var documentResults []formatters.DocumentResult
	failedFiles := 0
	for _, filePath := range files {
		if finalConfig.debug {
			fmt.Fprintf(os.Stderr, "[debug] processing %s\n", filePath)
		}

		extractResult, err := core.ExtractFile(core.ExtractConfig{
			FilePath: filePath,
			Debug:    finalConfig.debug,
			Config:   cfg,
			Store:    documentStore,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", filePath, err)
			failedFiles++
			continue
		}

		if extractResult.DocID != "" && !*quiet {
			fmt.Fprintf(os.Stderr, "Stored %s as %s\n", extractResult.Filename, extractResult.DocID)
		}

		documentResults = append(documentResults, formatters.DocumentResult{
			Filename: extractResult.Filename,
			Result:   extractResult.Result,
		})
	}

	if len(documentResults) == 0 {
		fmt.Fprintf(os.Stderr, "Error: All %d files failed to process\n", failedFiles)
		os.Exit(1)
	}

	// Format results
	formatterOptions := formatters.FormatterOptions{
		ConfidenceLevel: core.ParseConfidenceLevels(finalConfig.confidenceLevels),
		Verbose:         finalConfig.verbose,
		NoColor:         finalConfig.noColor,
		ShowSnippets:    finalConfig.showSnippets,
	}
	result, err := formatter.Format(documentResults, formatterOptions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting results: %v\n", err)
		os.Exit(1)
	}

	// Output results
	if *outputFile != "" {
		if err := writeOutputFile(*outputFile, result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println(result)
	}

	if failedFiles > 0 {
		fmt.Fprintf(os.Stderr, "Completed with %d failed files\n", failedFiles)
		os.Exit(1)
	}
}

// writeOutputFile writes formatted results to a file with path validation
func writeOutputFile(outputPath, result string) error {
	cleanOutputPath := filepath.Clean(outputPath)
	abs, err := filepath.Abs(cleanOutputPath)
	if err != nil {
		return fmt.Errorf("invalid output file path: %s", outputPath)
	}
	// Check for path traversal attempts
	if strings.Contains(outputPath, "..") || strings.Contains(cleanOutputPath, "..") {
		return fmt.Errorf("path traversal not allowed in output path: %s", outputPath)
	}
	cleanOutputPath = abs

	// Ensure output directory exists with secure permissions (owner only)
	outputDir := filepath.Dir(cleanOutputPath)
	if err := os.MkdirAll(outputDir, 0700); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	if err := os.WriteFile(cleanOutputPath, []byte(result), 0600); err != nil {
		return fmt.Errorf("error writing to output file: %w", err)
	}
	return nil
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// handleWebMode validates web mode flags and starts the web server
func handleWebMode(port string, args []string, inputFile, configFile string) error {
	// Validate that no file arguments are provided with web mode
	if len(args) > 0 {
		return fmt.Errorf("--web flag cannot be used with file arguments\n"+
			"Web mode starts a server - use the web interface to upload files\n"+
			"Troubleshooting: Remove file arguments and access http://localhost:%s after startup", port)
	}

	// Validate that --file flag is not used with web mode
	if inputFile != "" {
		return fmt.Errorf("--web flag cannot be used with --file flag\n"+
			"Web mode starts a server - use the web interface to upload files\n"+
			"Troubleshooting: Remove --file flag and access http://localhost:%s after startup", port)
	}

	if err := validateWebModeFlags(); err != nil {
		return err
	}

	cfg := loadConfiguration(configFile)

	// Config file port applies unless --port was given explicitly
	if !isFlagSet("port") && cfg.Web.Port > 0 {
		port = strconv.Itoa(cfg.Web.Port)
	}

	// Validate and find available port
	finalPort, err := findAvailablePort(port)
	if err != nil {
		return fmt.Errorf("port validation failed: %w\n"+
			"Troubleshooting: Try a different port with --port <number> or ensure no other services are using ports 8080-8089", err)
	}

	// Open the document store so uploads are retrievable later
	var documentStore *store.Store
	if cfg.Storage.Enabled {
		documentStore, err = store.Open(cfg.Storage.Dir, cfg.Storage.KeepPDFs)
		if err != nil {
			return fmt.Errorf("failed to open document store: %w\n"+
				"Troubleshooting: Check that %s is writable or disable storage in the config file", err, cfg.Storage.Dir)
		}
	}

	// Start web server (this will block)
	return web.NewWebServer(finalPort, cfg, documentStore).Start()
}

// validateWebModeFlags validates that incompatible flags are not used with --web
func validateWebModeFlags() error {
	var incompatibleFlags []string
	var troubleshooting []string

	if isFlagSet("output") {
		incompatibleFlags = append(incompatibleFlags, "--output")
		troubleshooting = append(troubleshooting, "Web mode provides its own output interface")
	}
	if isFlagSet("format") {
		incompatibleFlags = append(incompatibleFlags, "--format")
		troubleshooting = append(troubleshooting, "Web mode handles output formatting automatically")
	}
	if isFlagSet("no-color") {
		incompatibleFlags = append(incompatibleFlags, "--no-color")
		troubleshooting = append(troubleshooting, "Web mode uses its own color scheme")
	}
	if isFlagSet("quiet") {
		incompatibleFlags = append(incompatibleFlags, "--quiet")
		troubleshooting = append(troubleshooting, "Web mode provides its own progress indicators")
	}
	if isFlagSet("show-snippets") {
		incompatibleFlags = append(incompatibleFlags, "--show-snippets")
		troubleshooting = append(troubleshooting, "Web mode always includes evidence snippets")
	}
	if isFlagSet("version") {
		incompatibleFlags = append(incompatibleFlags, "--version")
		troubleshooting = append(troubleshooting, "Web mode displays version info at the /health endpoint")
	}
	if isFlagSet("list-profiles") {
		incompatibleFlags = append(incompatibleFlags, "--list-profiles")
		troubleshooting = append(troubleshooting, "Web mode does not currently support configuration profiles")
	}
	if isFlagSet("profile") {
		incompatibleFlags = append(incompatibleFlags, "--profile")
		troubleshooting = append(troubleshooting, "Web mode does not currently support configuration profiles")
	}

	if len(incompatibleFlags) > 0 {
		errorMsg := fmt.Sprintf("--web flag cannot be used with the following flags: %s\n\n", strings.Join(incompatibleFlags, ", "))
		errorMsg += "Troubleshooting:\n"
		for i, tip := range troubleshooting {
			errorMsg += fmt.Sprintf("  %d. %s\n", i+1, tip)
		}
		errorMsg += "\nRemove the incompatible flags and try again."
		return fmt.Errorf("%s", errorMsg)
	}

	return nil
}

// findAvailablePort validates the requested port and finds an available port
func findAvailablePort(requestedPort string) (string, error) {
	port, err := validatePort(requestedPort)
	if err != nil {
		return "", err
	}

	if isPortAvailable(port) {
		return port, nil
	}

	// If requested port is not available, try alternatives in range 8080-8089
	basePort := 8080
	for i := 0; i < 10; i++ {
		alternativePort := fmt.Sprintf("%d", basePort+i)
		if isPortAvailable(alternativePort) {
			fmt.Fprintf(os.Stderr, "Warning: Port %s is not available, using port %s instead\n", requestedPort, alternativePort)
			return alternativePort, nil
		}
	}

	return "", fmt.Errorf("no available ports found in range 8080-8089")
}

// validatePort validates that the port string is a valid port number
func validatePort(portStr string) (string, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", fmt.Errorf("invalid port format '%s': must be a number", portStr)
	}

	if port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}

	if port < 1024 && os.Geteuid() != 0 {
		return "", fmt.Errorf("port %d requires root privileges (ports below 1024 are privileged)", port)
	}

	return portStr, nil
}

// isPortAvailable checks if a port is available for binding
func isPortAvailable(port string) bool {
	address := fmt.Sprintf(":%s", port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

// isTerminal checks if the file descriptor is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
