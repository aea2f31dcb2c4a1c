// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/webllama/internal/bootstrap"
	"github.com/jeranaias/webllama/internal/config"
	"github.com/jeranaias/webllama/internal/ollama"
	"github.com/jeranaias/webllama/internal/python"
)

// minDiskBytes is the free-space floor before the disk check warns.
// The recommended model alone is about 2 GB.
const minDiskBytes = 5 << 30

// =============================================================================
// STYLES
// =============================================================================

var (
	// Palette
	brandPrimary   = lipgloss.Color("#0D9488") // Teal
	brandSecondary = lipgloss.Color("#0EA5E9") // Sky blue
	brandAccent    = lipgloss.Color("#22C55E") // Green
	brandWarning   = lipgloss.Color("#F59E0B") // Amber
	brandError     = lipgloss.Color("#EF4444") // Red
	textMuted      = lipgloss.Color("#6B7280") // Gray

	titleStyle    = lipgloss.NewStyle().Foreground(brandPrimary).Bold(true).MarginBottom(1)
	subtitleStyle = lipgloss.NewStyle().Foreground(textMuted).Italic(true)

	successStyle   = lipgloss.NewStyle().Foreground(brandAccent).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(brandError).Bold(true)
	warningStyle   = lipgloss.NewStyle().Foreground(brandWarning)
	highlightStyle = lipgloss.NewStyle().Foreground(brandSecondary).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(textMuted)

	selectedStyle   = lipgloss.NewStyle().Foreground(brandPrimary).Bold(true)
	unselectedStyle = lipgloss.NewStyle().Foreground(textMuted)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brandPrimary).
			Padding(1, 2)
)

// =============================================================================
// ASCII ART
// =============================================================================

const logo = `
    ██╗    ██╗███████╗██████╗ ██╗     ██╗      █████╗ ███╗   ███╗ █████╗
    ██║    ██║██╔════╝██╔══██╗██║     ██║     ██╔══██╗████╗ ████║██╔══██╗
    ██║ █╗ ██║█████╗  ██████╔╝██║     ██║     ███████║██╔████╔██║███████║
    ██║███╗██║██╔══╝  ██╔══██╗██║     ██║     ██╔══██║██║╚██╔╝██║██╔══██║
    ╚███╔███╔╝███████╗██████╔╝███████╗███████╗██║  ██║██║ ╚═╝ ██║██║  ██║
     ╚══╝╚══╝ ╚══════╝╚═════╝ ╚══════╝╚══════╝╚═╝  ╚═╝╚═╝     ╚═╝╚═╝  ╚═╝
`

const tagline = "A local-LLM web application, installed in minutes"

// =============================================================================
// INSTALLER MODEL
// =============================================================================

// Phase represents the current installation phase
type Phase int

const (
	PhaseWelcome Phase = iota
	PhaseSystemCheck
	PhaseOllamaSetup
	PhaseModelSelect
	PhaseInstall
	PhaseComplete
)

// CheckResult represents a system check result
type CheckResult struct {
	Name    string
	Status  string // "pass", "fail", "warn", "checking"
	Message string
	Fix     string
}

// InstallStep is one unit of work in the install phase.
type InstallStep struct {
	Name    string
	Status  string // "pending", "running", "done", "skipped", "failed"
	Message string
}

// Installer is the main installer model
type Installer struct {
	phase         Phase
	width         int
	height        int
	spinner       spinner.Model
	progress      progress.Model
	checks        []CheckResult
	currentCheck  int
	ollamaFound   bool
	pythonPath    string
	modelSelected int
	models        []string
	appDir        string
	installPath   string
	steps         []InstallStep
	currentStep   int
	error         string

	// Animation state
	typingText   string
	typingTarget string
	typingIndex  int

	// Completion screen
	tipsSelected bool // true = "Show quick tips", false = "Close"
}

// NewInstaller creates a new installer instance
func NewInstaller() *Installer {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(brandPrimary)

	p := progress.New(progress.WithDefaultGradient())

	homeDir, _ := os.UserHomeDir()
	cwd, _ := os.Getwd()

	return &Installer{
		phase:    PhaseWelcome,
		spinner:  s,
		progress: p,
		checks: []CheckResult{
			{Name: "Operating System", Status: "checking"},
			{Name: "Python Runtime", Status: "checking"},
			{Name: "Ollama Service", Status: "checking"},
			{Name: "Disk Space", Status: "checking"},
			{Name: "Existing Install", Status: "checking"},
		},
		models: []string{
			"llama3.2:3b (Recommended - fast, low memory)",
			"llama3.1:8b (Better quality)",
			"qwen2.5:7b (Strong general model)",
			"mistral:7b (Good balance)",
			"Skip model download",
		},
		steps: []InstallStep{
			{Name: "Ollama daemon", Status: "pending"},
			{Name: "Language model", Status: "pending"},
			{Name: "Python environment", Status: "pending"},
			{Name: "Configuration", Status: "pending"},
			{Name: "Launcher binary", Status: "pending"},
			{Name: "Desktop entry", Status: "pending"},
		},
		appDir:       cwd,
		installPath:  filepath.Join(homeDir, ".local", "bin"),
		tipsSelected: true, // Default to "Show quick tips"
	}
}

// Init initializes the installer
func (i *Installer) Init() tea.Cmd {
	return tea.Batch(
		i.spinner.Tick,
		i.typeWriter(logo, 5*time.Millisecond),
	)
}

// =============================================================================
// UPDATE
// =============================================================================

// typeWriterMsg updates the typing animation
type typeWriterMsg struct {
	target string
	index  int
}

// checkCompleteMsg signals a check is complete
type checkCompleteMsg struct {
	index  int
	result CheckResult
}

// stepDoneMsg signals an install step finished
type stepDoneMsg struct {
	index   int
	status  string
	message string
}

// Update handles messages
func (i *Installer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return i.handleKey(msg)

	case tea.WindowSizeMsg:
		i.width = msg.Width
		i.height = msg.Height
		i.progress.Width = clamp(msg.Width-20, 20, 100)
		boxStyle = boxStyle.Width(clamp(msg.Width-16, 40, 70))
		// Spinner tick forces a redraw at the new size.
		return i, i.spinner.Tick

	case spinner.TickMsg:
		var cmd tea.Cmd
		i.spinner, cmd = i.spinner.Update(msg)
		return i, cmd

	case progress.FrameMsg:
		var cmd tea.Cmd
		progressModel, cmd := i.progress.Update(msg)
		i.progress = progressModel.(progress.Model)
		return i, cmd

	case typeWriterMsg:
		// Ticks from an abandoned animation carry a stale target.
		if msg.target != i.typingTarget || msg.index > len(msg.target) {
			return i, nil
		}
		i.typingText = msg.target[:msg.index]
		i.typingIndex = msg.index
		if msg.index < len(msg.target) {
			return i, i.typeWriterTick(msg.target, msg.index+1, 5*time.Millisecond)
		}
		return i, nil

	case checkCompleteMsg:
		i.checks[msg.index] = msg.result
		i.currentCheck++
		if i.currentCheck < len(i.checks) {
			return i, i.runCheck(i.currentCheck)
		}
		// All checks complete
		i.ollamaFound = i.checks[2].Status != "fail"
		return i, nil

	case stepDoneMsg:
		i.steps[msg.index].Status = msg.status
		i.steps[msg.index].Message = msg.message
		i.currentStep++

		percent := float64(i.currentStep) / float64(len(i.steps))
		progressCmd := i.progress.SetPercent(percent)

		if i.currentStep < len(i.steps) {
			i.steps[i.currentStep].Status = "running"
			return i, tea.Batch(progressCmd, i.runStep(i.currentStep))
		}
		i.phase = PhaseComplete
		return i, progressCmd
	}

	return i, nil
}

// handleKey processes key presses
func (i *Installer) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if i.phase != PhaseInstall {
			return i, tea.Quit
		}
		return i, nil

	case "enter", " ":
		return i.handleSelect()

	case "up", "k":
		if i.phase == PhaseModelSelect && i.modelSelected > 0 {
			i.modelSelected--
		}
		if i.phase == PhaseComplete {
			i.tipsSelected = true
		}
		return i, nil

	case "down", "j":
		if i.phase == PhaseModelSelect && i.modelSelected < len(i.models)-1 {
			i.modelSelected++
		}
		if i.phase == PhaseComplete {
			i.tipsSelected = false
		}
		return i, nil

	case "tab":
		if i.phase == PhaseComplete {
			i.tipsSelected = !i.tipsSelected
		}
		return i, nil
	}

	return i, nil
}

// handleSelect advances the phase machine on enter/space.
func (i *Installer) handleSelect() (tea.Model, tea.Cmd) {
	switch i.phase {
	case PhaseWelcome:
		i.phase = PhaseSystemCheck
		return i, i.runCheck(0)

	case PhaseSystemCheck:
		if i.currentCheck >= len(i.checks) {
			// A missing Ollama gets its own install-hint screen first.
			i.phase = PhaseModelSelect
			if !i.ollamaFound {
				i.phase = PhaseOllamaSetup
			}
		}
		return i, nil

	case PhaseOllamaSetup:
		// Re-probe in case the user installed Ollama while the screen was up
		if _, err := ollama.FindExecutable(); err == nil {
			i.ollamaFound = true
		}
		i.phase = PhaseModelSelect
		return i, nil

	case PhaseModelSelect:
		i.phase = PhaseInstall
		i.steps[0].Status = "running"
		return i, i.runStep(0)

	case PhaseInstall:
		// Wait for the steps to finish
		return i, nil

	case PhaseComplete:
		if i.tipsSelected {
			w := NewWelcomeScreen()
			return w, w.Init()
		}
		return i, tea.Quit
	}

	return i, nil
}

// =============================================================================
// COMMANDS
// =============================================================================

// typeWriter starts typing text character by character.
func (i *Installer) typeWriter(text string, delay time.Duration) tea.Cmd {
	i.typingTarget = text
	i.typingIndex = 0
	i.typingText = ""
	return i.typeWriterTick(text, 1, delay)
}

func (i *Installer) typeWriterTick(target string, index int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return typeWriterMsg{target: target, index: index}
	})
}

// runCheck runs one system check off the UI goroutine.
func (i *Installer) runCheck(index int) tea.Cmd {
	return func() tea.Msg {
		result := i.checks[index]
		result.Status = "checking"

		switch index {
		case 0:
			result = i.checkOS()
		case 1:
			result = i.checkPython()
		case 2:
			result = i.checkOllama()
		case 3:
			result = i.checkDisk()
		case 4:
			result = i.checkExisting()
		}

		time.Sleep(300 * time.Millisecond) // Pace the list for readability
		return checkCompleteMsg{index: index, result: result}
	}
}

// System checks
func (i *Installer) checkOS() CheckResult {
	return CheckResult{
		Name:    "Operating System",
		Status:  "pass",
		Message: fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func (i *Installer) checkPython() CheckResult {
	interp, err := python.FindInterpreter()
	if err != nil {
		return CheckResult{
			Name:    "Python Runtime",
			Status:  "fail",
			Message: "Python not found",
			Fix:     fmt.Sprintf("Install Python %d.%d or newer", python.MinMajor, python.MinMinor),
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	major, minor, err := python.Version(ctx, interp)
	if err != nil {
		return CheckResult{
			Name:    "Python Runtime",
			Status:  "warn",
			Message: fmt.Sprintf("%s (version unknown)", interp),
		}
	}
	if major < python.MinMajor || (major == python.MinMajor && minor < python.MinMinor) {
		return CheckResult{
			Name:    "Python Runtime",
			Status:  "fail",
			Message: fmt.Sprintf("Python %d.%d is too old", major, minor),
			Fix:     fmt.Sprintf("Install Python %d.%d or newer", python.MinMajor, python.MinMinor),
		}
	}

	i.pythonPath = interp
	return CheckResult{
		Name:    "Python Runtime",
		Status:  "pass",
		Message: fmt.Sprintf("Python %d.%d", major, minor),
	}
}

func (i *Installer) checkOllama() CheckResult {
	if _, err := ollama.FindExecutable(); err != nil {
		return CheckResult{
			Name:    "Ollama Service",
			Status:  "fail",
			Message: "Ollama not installed",
			Fix:     "Visit https://ollama.com to install",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client := ollama.NewClient()
	if err := client.CheckRunning(ctx); err != nil {
		return CheckResult{
			Name:    "Ollama Service",
			Status:  "warn",
			Message: "Installed, daemon will be started",
		}
	}

	return CheckResult{
		Name:    "Ollama Service",
		Status:  "pass",
		Message: "Running",
	}
}

func (i *Installer) checkDisk() CheckResult {
	home, err := os.UserHomeDir()
	if err != nil {
		return CheckResult{Name: "Disk Space", Status: "warn", Message: "Could not check"}
	}

	free, err := getFreeDiskSpace(home)
	if err != nil {
		return CheckResult{Name: "Disk Space", Status: "warn", Message: "Could not check"}
	}
	if free < minDiskBytes {
		return CheckResult{
			Name:    "Disk Space",
			Status:  "warn",
			Message: fmt.Sprintf("%s free (models need several GB)", ollama.FormatBytes(int64(free))),
		}
	}
	return CheckResult{
		Name:    "Disk Space",
		Status:  "pass",
		Message: fmt.Sprintf("%s free", ollama.FormatBytes(int64(free))),
	}
}

func (i *Installer) checkExisting() CheckResult {
	path, err := config.ConfigPathTOML()
	if err == nil {
		if _, err := os.Stat(path); err == nil {
			return CheckResult{
				Name:    "Existing Install",
				Status:  "pass",
				Message: "Found existing config, completed steps will be kept",
			}
		}
	}
	return CheckResult{
		Name:    "Existing Install",
		Status:  "pass",
		Message: "Fresh install",
	}
}

// =============================================================================
// INSTALL STEPS
// =============================================================================

// runStep executes one install step and reports the outcome.
func (i *Installer) runStep(index int) tea.Cmd {
	return func() tea.Msg {
		switch index {
		case 0:
			return i.stepDaemon()
		case 1:
			return i.stepModel()
		case 2:
			return i.stepVenv()
		case 3:
			return i.stepConfig()
		case 4:
			return i.stepLauncher()
		case 5:
			return i.stepDesktopEntry()
		}
		return stepDoneMsg{index: index, status: "skipped"}
	}
}

func (i *Installer) stepDaemon() tea.Msg {
	if !i.ollamaFound {
		return stepDoneMsg{index: 0, status: "skipped", message: "Ollama not installed"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	b := bootstrap.New(ollama.NewClient())
	if err := b.EnsureDaemon(ctx); err != nil {
		return stepDoneMsg{index: 0, status: "failed", message: err.Error()}
	}
	if err := b.WaitHealthy(ctx); err != nil {
		return stepDoneMsg{index: 0, status: "failed", message: err.Error()}
	}
	return stepDoneMsg{index: 0, status: "done", message: "Daemon healthy"}
}

func (i *Installer) stepModel() tea.Msg {
	name := i.selectedModel()
	if name == "" || !i.ollamaFound {
		return stepDoneMsg{index: 1, status: "skipped"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	client := ollama.NewClient()
	if present, err := client.HasModel(ctx, name); err == nil && present {
		return stepDoneMsg{index: 1, status: "done", message: name + " already present"}
	}
	if err := client.Pull(ctx, name, nil); err != nil {
		return stepDoneMsg{index: 1, status: "failed", message: err.Error()}
	}
	return stepDoneMsg{index: 1, status: "done", message: name + " downloaded"}
}

func (i *Installer) stepVenv() tea.Msg {
	if i.pythonPath == "" {
		return stepDoneMsg{index: 2, status: "skipped", message: "Python not found"}
	}

	venv := python.NewVenv(filepath.Join(i.appDir, ".venv"))
	if venv.Exists() {
		return stepDoneMsg{index: 2, status: "done", message: "Already exists"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	if err := venv.Create(ctx, i.pythonPath); err != nil {
		return stepDoneMsg{index: 2, status: "failed", message: err.Error()}
	}

	requirements := filepath.Join(i.appDir, "requirements.txt")
	if _, err := os.Stat(requirements); err == nil {
		if err := venv.PipInstall(ctx, requirements, nil); err != nil {
			return stepDoneMsg{index: 2, status: "failed", message: err.Error()}
		}
	}
	return stepDoneMsg{index: 2, status: "done", message: "Created"}
}

func (i *Installer) stepConfig() tea.Msg {
	path, err := config.ConfigPathTOML()
	if err == nil {
		if _, err := os.Stat(path); err == nil {
			return stepDoneMsg{index: 3, status: "done", message: "Already exists"}
		}
	}

	cfg := config.Default()
	cfg.App.Dir = i.appDir
	if name := i.selectedModel(); name != "" {
		cfg.Ollama.Model = name
	}
	if err := config.Save(cfg); err != nil {
		return stepDoneMsg{index: 3, status: "failed", message: err.Error()}
	}
	return stepDoneMsg{index: 3, status: "done", message: "Written"}
}

func (i *Installer) stepLauncher() tea.Msg {
	if launcherInstalled(i.installPath) {
		return stepDoneMsg{index: 4, status: "done", message: "Already installed"}
	}
	if err := installLauncherBinary(i.installPath); err != nil {
		return stepDoneMsg{index: 4, status: "failed", message: err.Error()}
	}
	return stepDoneMsg{index: 4, status: "done", message: "Installed"}
}

func (i *Installer) stepDesktopEntry() tea.Msg {
	if runtime.GOOS != "linux" {
		return stepDoneMsg{index: 5, status: "skipped", message: "Linux only"}
	}

	cfg, err := config.Load()
	if err != nil || cfg == nil {
		cfg = config.Default()
	}
	if err := writeDesktopEntry(i.installPath, cfg); err != nil {
		return stepDoneMsg{index: 5, status: "failed", message: err.Error()}
	}
	return stepDoneMsg{index: 5, status: "done", message: "Created"}
}

// selectedModel returns the bare model name for the current selection, or
// "" when the user chose to skip the download.
func (i *Installer) selectedModel() string {
	if i.modelSelected >= len(i.models)-1 {
		return ""
	}
	return strings.Split(i.models[i.modelSelected], " ")[0]
}

// =============================================================================
// LAUNCHER BINARY INSTALL
// =============================================================================

// GitHubRelease represents a GitHub release response
type GitHubRelease struct {
	TagName string        `json:"tag_name"`
	Assets  []GitHubAsset `json:"assets"`
}

// GitHubAsset represents a release asset
type GitHubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// launcherName returns the platform file name of the webllama binary.
func launcherName() string {
	if runtime.GOOS == "windows" {
		return "webllama.exe"
	}
	return "webllama"
}

// launcherInstalled checks if the webllama binary is already in place.
func launcherInstalled(installPath string) bool {
	_, err := os.Stat(filepath.Join(installPath, launcherName()))
	return err == nil
}

// installLauncherBinary puts the webllama binary into installPath. A copy
// shipped next to the installer takes priority; otherwise the matching
// release asset is downloaded from GitHub.
func installLauncherBinary(installPath string) error {
	if err := os.MkdirAll(installPath, 0755); err != nil {
		return fmt.Errorf("failed to create install directory: %w", err)
	}

	dest := filepath.Join(installPath, launcherName())

	// Release archives ship the launcher next to the installer
	if self, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(self), launcherName())
		if _, err := os.Stat(sibling); err == nil {
			if err := copyFile(sibling, dest); err != nil {
				return fmt.Errorf("failed to copy binary: %w", err)
			}
			return os.Chmod(dest, 0755)
		}
	}

	return downloadLauncherBinary(installPath)
}

// releaseAssetSuffix builds the OS/arch part of a release asset name,
// e.g. "Linux" + "x86_64" for linux/amd64.
func releaseAssetSuffix() (osName, archName string) {
	archName = runtime.GOARCH
	switch runtime.GOARCH {
	case "amd64":
		archName = "x86_64"
	case "386":
		archName = "i386"
	}

	osName = runtime.GOOS
	switch runtime.GOOS {
	case "darwin":
		osName = "Darwin"
	case "linux":
		osName = "Linux"
	case "windows":
		osName = "Windows"
	}
	return osName, archName
}

// downloadLauncherBinary fetches the matching release asset from GitHub
// and unpacks the launcher into installPath.
func downloadLauncherBinary(installPath string) error {
	const repo = "jeranaias/webllama"
	osName, archName := releaseAssetSuffix()

	releaseURL := fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", repo)
	resp, err := http.Get(releaseURL)
	if err != nil {
		return fmt.Errorf("failed to fetch release info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch release info: HTTP %d", resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return fmt.Errorf("failed to parse release info: %w", err)
	}

	// Asset names look like webllama_Linux_x86_64.tar.gz
	var assetURL, assetName string
	for _, asset := range release.Assets {
		if strings.Contains(asset.Name, osName) && strings.Contains(asset.Name, archName) {
			assetURL, assetName = asset.BrowserDownloadURL, asset.Name
			break
		}
	}
	if assetURL == "" {
		return fmt.Errorf("no release found for %s/%s", osName, archName)
	}

	tmpPath, err := downloadToTemp(assetURL)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	return unpackLauncher(tmpPath, assetName, installPath)
}

func downloadToTemp(url string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download binary: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download binary: HTTP %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp("", "webllama-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	_, err = io.Copy(tmpFile, resp.Body)
	tmpFile.Close()
	if err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("failed to save download: %w", err)
	}
	return tmpFile.Name(), nil
}

// unpackLauncher extracts the launcher from the downloaded asset, picking
// the extractor by extension. A bare binary is copied as-is.
func unpackLauncher(srcPath, assetName, installPath string) error {
	switch {
	case strings.HasSuffix(assetName, ".zip"):
		if err := extractZip(srcPath, installPath); err != nil {
			return fmt.Errorf("failed to extract zip: %w", err)
		}
	case strings.HasSuffix(assetName, ".tar.gz"), strings.HasSuffix(assetName, ".tgz"):
		if err := extractTarGz(srcPath, installPath); err != nil {
			return fmt.Errorf("failed to extract tar.gz: %w", err)
		}
	default:
		dest := filepath.Join(installPath, launcherName())
		if err := copyFile(srcPath, dest); err != nil {
			return fmt.Errorf("failed to copy binary: %w", err)
		}
		return os.Chmod(dest, 0755)
	}
	return nil
}

// isLauncherEntry reports whether an archive member is the launcher
// binary. Archives may nest it under a directory, so only the base name
// counts.
func isLauncherEntry(name string) bool {
	base := filepath.Base(name)
	return base == "webllama" || base == "webllama.exe"
}

// writeExecutable streams r into dest with the executable bit set.
func writeExecutable(dest string, r io.Reader) error {
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, r)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return err
}

func extractZip(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if !isLauncherEntry(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = writeExecutable(filepath.Join(dest, filepath.Base(f.Name)), rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func extractTarGz(src, dest string) error {
	file, err := os.Open(src)
	if err != nil {
		return err
	}
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !isLauncherEntry(header.Name) {
			continue
		}
		if err := writeExecutable(filepath.Join(dest, filepath.Base(header.Name)), tr); err != nil {
			return err
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return err
}

// writeDesktopEntry creates a freedesktop launcher pointing at the
// installed webllama binary (Linux only).
func writeDesktopEntry(installPath string, cfg *config.Config) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	dir := filepath.Join(home, ".local", "share", "applications")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	entry := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=webllama
Comment=Local LLM web app on %s
Exec=%s launch
Terminal=true
Categories=Development;Utility;
`, cfg.Endpoint(), filepath.Join(installPath, launcherName()))

	return os.WriteFile(filepath.Join(dir, "webllama.desktop"), []byte(entry), 0644)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the installer
func (i *Installer) View() string {
	switch i.phase {
	case PhaseWelcome:
		return i.viewWelcome()
	case PhaseSystemCheck:
		return i.viewSystemCheck()
	case PhaseOllamaSetup:
		return i.viewOllamaSetup()
	case PhaseModelSelect:
		return i.viewModelSelect()
	case PhaseInstall:
		return i.viewInstall()
	case PhaseComplete:
		return i.viewComplete()
	}
	return ""
}

func (i *Installer) viewWelcome() string {
	var s strings.Builder

	// The logo types itself out on first show.
	logoStyle := lipgloss.NewStyle().Foreground(brandPrimary).Bold(true)
	rendered := logo
	if i.typingTarget == logo {
		rendered = i.typingText
	}
	s.WriteString(logoStyle.Render(rendered))
	s.WriteString("\n")
	s.WriteString(subtitleStyle.Render("    " + tagline))
	s.WriteString("\n\n")
	s.WriteString(dimStyle.Render("    Version " + version))
	s.WriteString("\n\n")

	// Welcome box
	welcomeText := `
Welcome to the webllama installer!

This installer will:

  * Check your system requirements
  * Bring up the Ollama daemon
  * Download the language model
  * Create the Python environment
  * Write your configuration and launcher

`
	s.WriteString(boxStyle.Render(welcomeText))
	s.WriteString("\n\n")

	// Continue prompt
	s.WriteString(highlightStyle.Render("  Press ENTER to begin"))
	s.WriteString(dimStyle.Render("  |  Press Q to quit"))

	return i.center(s.String())
}

func (i *Installer) viewSystemCheck() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("  System Requirements Check"))
	s.WriteString("\n\n")

	for idx, check := range i.checks {
		s.WriteString(i.renderCheckRow(idx, check))
	}
	s.WriteString("\n")

	if i.currentCheck >= len(i.checks) {
		anyFailed := false
		for _, check := range i.checks {
			if check.Status == "fail" {
				anyFailed = true
				break
			}
		}

		// A failed check is not a dead end: the install steps skip what
		// they cannot do, and the doctor can finish the job later.
		if anyFailed {
			s.WriteString(warningStyle.Render("  Some checks need attention"))
			s.WriteString("\n\n")
			s.WriteString(highlightStyle.Render("  Press ENTER to continue anyway"))
		} else {
			s.WriteString(successStyle.Render("  All checks passed!"))
			s.WriteString("\n\n")
			s.WriteString(highlightStyle.Render("  Press ENTER to continue"))
		}
	}

	return i.center(s.String())
}

func (i *Installer) renderCheckRow(idx int, check CheckResult) string {
	icon, status, style := "[ ]", "Checking...", dimStyle
	switch check.Status {
	case "checking":
		if idx == i.currentCheck {
			icon = i.spinner.View()
		}
	case "pass":
		icon, status, style = "[OK]", check.Message, successStyle
	case "fail":
		icon, status, style = "[FAIL]", check.Message, errorStyle
	case "warn":
		icon, status, style = "[!!]", check.Message, warningStyle
	}

	row := fmt.Sprintf("  %s %s%s\n",
		style.Render(icon), check.Name, dimStyle.Render(" - "+status))
	if check.Fix != "" {
		row += dimStyle.Render("      -> "+check.Fix) + "\n"
	}
	return row
}

func (i *Installer) viewOllamaSetup() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("  Ollama Setup Required"))
	s.WriteString("\n\n")

	content := `
Ollama is required to run the local language model.

Please install Ollama from:

  ` + highlightStyle.Render("https://ollama.com") + `

The installer starts the daemon for you once the
binary is on your PATH.

Then press ENTER to continue.
`

	s.WriteString(boxStyle.Render(content))
	s.WriteString("\n\n")
	s.WriteString(highlightStyle.Render("  Press ENTER when Ollama is installed"))

	return i.center(s.String())
}

func (i *Installer) viewModelSelect() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Choose Your Language Model"))
	s.WriteString("\n\n")

	s.WriteString(dimStyle.Render("The web app answers through this model:"))
	s.WriteString("\n\n")

	for idx, model := range i.models {
		// Cursor and placeholder are both two columns so rows stay aligned.
		cursor, style := "  ", unselectedStyle
		if idx == i.modelSelected {
			cursor, style = "> ", selectedStyle
		}
		s.WriteString(style.Render("  " + cursor + model))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(dimStyle.Render("Use ↑/↓ to select, ENTER to confirm"))

	return i.center(s.String())
}

func (i *Installer) viewInstall() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("  Installing webllama"))
	s.WriteString("\n\n")

	for idx, step := range i.steps {
		var icon string
		var style lipgloss.Style

		switch step.Status {
		case "pending":
			icon = "[ ]"
			style = dimStyle
		case "running":
			icon = i.spinner.View()
			style = highlightStyle
		case "done":
			icon = "[OK]"
			style = successStyle
		case "skipped":
			icon = "[--]"
			style = dimStyle
		case "failed":
			icon = "[!!]"
			style = errorStyle
		}

		s.WriteString(fmt.Sprintf("  %s %s", style.Render(icon), i.steps[idx].Name))
		if step.Message != "" {
			s.WriteString(dimStyle.Render(fmt.Sprintf(" - %s", step.Message)))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString("  " + i.progress.View())
	s.WriteString("\n\n")
	s.WriteString(dimStyle.Render("  Model downloads can take several minutes..."))

	return i.center(s.String())
}

func (i *Installer) viewComplete() string {
	var s strings.Builder

	// Success art
	successArt := `
    +------------------------------------------+
    |                                          |
    |      *** Installation Complete! ***      |
    |                                          |
    +------------------------------------------+
`
	s.WriteString(successStyle.Render(successArt))
	s.WriteString("\n")

	// Step summary
	var failed int
	for _, step := range i.steps {
		if step.Status == "failed" {
			failed++
		}
	}
	if failed > 0 {
		s.WriteString(warningStyle.Render(fmt.Sprintf("  %d step(s) did not finish - run 'webllama doctor' after closing.\n", failed)))
		s.WriteString("\n")
	}

	// Quick highlights
	highlights := `
  +-----------------------------------------------------+
  |  What you just got:                                 |
  |                                                     |
  |  * Local web app       Served on your machine      |
  |  * Private inference   Nothing leaves this host    |
  |  * Health-checked boot Daemon verified at launch   |
  |  * Idempotent install  Re-run anytime safely       |
  +-----------------------------------------------------+
`
	s.WriteString(dimStyle.Render(highlights))
	s.WriteString("\n")

	s.WriteString("  To start the web app, run: ")
	s.WriteString(highlightStyle.Render("webllama"))
	s.WriteString("\n\n")

	// Two options with selection indicator
	s.WriteString("  Choose your next step:\n\n")

	tips := "  Show quick tips"
	if i.tipsSelected {
		s.WriteString(selectedStyle.Render("  > " + tips))
		s.WriteString(highlightStyle.Render("  <- A short tour of the commands"))
	} else {
		s.WriteString(unselectedStyle.Render("    " + tips))
	}
	s.WriteString("\n\n")

	closeText := "  Close installer"
	if !i.tipsSelected {
		s.WriteString(selectedStyle.Render("  > " + closeText))
		s.WriteString(dimStyle.Render("  <- You can run 'webllama' anytime"))
	} else {
		s.WriteString(unselectedStyle.Render("    " + closeText))
	}
	s.WriteString("\n\n")

	// Navigation help
	s.WriteString(dimStyle.Render("  Up/Down or Tab to select  |  Enter to confirm"))
	s.WriteString("\n\n")

	// Config path
	if path, err := config.ConfigPathTOML(); err == nil {
		s.WriteString(dimStyle.Render(fmt.Sprintf("  Config: %s", path)))
	}

	return i.center(s.String())
}

// center centers content on screen
func (i *Installer) center(content string) string {
	if i.width == 0 || i.height == 0 {
		return content
	}
	pad := (i.height - strings.Count(content, "\n") - 1) / 3
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", pad) + content
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
