// Package setup implements the first-run and reconfiguration form: server
// URL, session token, and polling preferences. The token never touches the
// config file; it is stored in the system keyring and the config carries
// only a reference.
package setup

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/adchat/internal/api"
	"github.com/nhle/adchat/internal/credential"
	"github.com/nhle/adchat/internal/keys"
	"github.com/nhle/adchat/internal/model"
	"github.com/nhle/adchat/internal/theme"
)

// TokenKey is the keyring entry holding the backend session token.
const TokenKey = "session-token"

// Mode represents the current state of the setup view.
type Mode int

const (
	ModeForm Mode = iota
	ModeValidating
	ModeResult
)

// DoneMsg signals setup finished. Config is nil when the user aborted.
type DoneMsg struct {
	Config *model.AppConfig
	Token  string
}

// validateResultMsg carries the outcome of the connection test.
type validateResultMsg struct {
	err error
}

// Model is the Bubble Tea model for the setup form.
type Model struct {
	mode       Mode
	configPath string
	form       *huh.Form
	spinner    spinner.Model

	// Form field values (huh binds to these)
	formBaseURL  string
	formToken    string
	formInterval string
	formHistory  string

	validError error
	statusMsg  string

	keys          *keys.KeyMap
	width, height int
}

// New creates a setup form pre-filled from the current configuration.
func New(cfg *model.AppConfig, configPath string, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		mode:         ModeForm,
		configPath:   configPath,
		spinner:      sp,
		formBaseURL:  cfg.Server.BaseURL,
		formInterval: strconv.Itoa(cfg.Notifications.PollIntervalSec),
		formHistory:  strconv.Itoa(cfg.Chat.HistoryLimit),
		keys:         k,
		width:        width,
		height:       height,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server URL").
				Description("Admissions site URL (e.g., https://tuyensinh.example.edu.vn)").
				Placeholder("https://tuyensinh.example.edu.vn").
				Value(&m.formBaseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Session Token").
				Description("Bearer token for the chat and notification APIs").
				EchoMode(huh.EchoModePassword).
				Value(&m.formToken).
				Validate(validateRequired("Token")),
			huh.NewInput().
				Title("Poll Interval").
				Description("Notification refresh interval in seconds").
				Placeholder("30").
				Value(&m.formInterval).
				Validate(validatePositiveInt("Poll interval")),
			huh.NewInput().
				Title("History Limit").
				Description("Maximum chat messages kept locally (0 disables pruning)").
				Placeholder("200").
				Value(&m.formHistory).
				Validate(validateNonNegativeInt("History limit")),
		),
	).WithWidth(m.formWidth())
}

// Update handles messages for the setup view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case validateResultMsg:
		m.validError = msg.err
		m.mode = ModeResult
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == ModeResult {
			return m.handleResultKeys(msg)
		}
		if m.mode == ModeValidating {
			if msg.String() == "esc" {
				m.mode = ModeForm
				m.form = m.buildForm()
				return m, m.form.Init()
			}
			return m, nil
		}
	}

	return m.updateForm(msg)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.mode = ModeValidating
		return m, tea.Batch(m.spinner.Tick, m.testConnection())
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return DoneMsg{} }
	}

	return m, cmd
}

// handleResultKeys processes key events on the validation result screen.
func (m Model) handleResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.validError != nil {
			m.mode = ModeForm
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		return m.save()

	case "esc":
		m.mode = ModeForm
		m.form = m.buildForm()
		return m, m.form.Init()
	}
	return m, nil
}

// testConnection probes the notifications endpoint with the entered
// credentials.
func (m Model) testConnection() tea.Cmd {
	baseURL := strings.TrimRight(m.formBaseURL, "/")
	token := m.formToken

	return func() tea.Msg {
		client := api.NewClient(baseURL, token, 15*time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		_, err := client.GetNotifications(ctx)
		return validateResultMsg{err: err}
	}
}

// save persists the config and token and reports completion.
func (m Model) save() (Model, tea.Cmd) {
	interval, _ := strconv.Atoi(m.formInterval)
	history, _ := strconv.Atoi(m.formHistory)

	cfg, err := model.LoadConfig(m.configPath)
	if err != nil {
		cfg = &model.AppConfig{}
	}
	cfg.Server.BaseURL = strings.TrimRight(m.formBaseURL, "/")
	cfg.Notifications.PollIntervalSec = interval
	cfg.Chat.HistoryLimit = history

	if err := credential.Set(TokenKey, m.formToken); err != nil {
		m.statusMsg = fmt.Sprintf("Error saving token: %v", err)
		m.mode = ModeForm
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	if err := model.SaveConfig(m.configPath, cfg); err != nil {
		m.statusMsg = fmt.Sprintf("Error saving config: %v", err)
		m.mode = ModeForm
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	token := m.formToken
	return m, func() tea.Msg {
		return DoneMsg{Config: cfg, Token: token}
	}
}

// View renders the setup view for the current mode.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Thiết lập kết nối")

	var body string
	switch m.mode {
	case ModeValidating:
		body = m.spinner.View() + " Đang kiểm tra kết nối..."

	case ModeResult:
		if m.validError != nil {
			body = theme.SeverityStyle(model.SeverityError).
				Render("✗ Kết nối thất bại: "+m.validError.Error()) +
				"\n\n" + theme.HelpStyle.Render("enter: sửa lại  •  esc: quay lại")
		} else {
			body = theme.SeverityStyle(model.SeveritySuccess).
				Render("✓ Kết nối thành công") +
				"\n\n" + theme.HelpStyle.Render("enter: lưu cấu hình  •  esc: quay lại")
		}

	default:
		body = m.form.View()
		if m.statusMsg != "" {
			body += "\n" + theme.HelpStyle.Render(m.statusMsg)
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, body)
	return theme.PanelStyle.Width(m.formWidth() + 4).Render(content)
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w > 72 {
		w = 72
	}
	if w < 40 {
		w = 40
	}
	return w
}

// --- Validators ---

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be a valid URL (e.g., https://example.edu.vn)")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https")
	}
	return nil
}

func validatePositiveInt(field string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive number", field)
		}
		return nil
	}
}

func validateNonNegativeInt(field string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be zero or a positive number", field)
		}
		return nil
	}
}
