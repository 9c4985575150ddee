// Package tui is the interactive terminal front end of the directory.
//
// The bubbletea runtime calls Update from one goroutine, which is the
// only place the directory.State and the open directory.Form change.
// Remote calls and image intake run as commands and come back as
// messages.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aanand-mishra/student-directory/internal/directory"
	"github.com/aanand-mishra/student-directory/internal/imageintake"
	"github.com/aanand-mishra/student-directory/internal/listview"
	"github.com/aanand-mishra/student-directory/internal/types"
)

type screen int

const (
	screenList screen = iota
	screenForm
	screenPicker
	screenConfirmDelete
)

// Options configures a Model.
type Options struct {
	Service   directory.RecordService
	Processor *imageintake.Processor
	// PageSize overrides listview.DefaultPageSize when positive.
	PageSize int
	// ExportPath is where the x key writes the CSV export.
	ExportPath string
	Logger     *slog.Logger
}

// Model is the bubbletea model of the whole interface.
type Model struct {
	ctx        context.Context
	svc        directory.RecordService
	intake     *imageintake.Processor
	log        *slog.Logger
	state      *directory.State
	exportPath string

	screen    screen
	table     table.Model
	search    textinput.Model
	searching bool
	form      *formModel
	formSeq   int
	picker    filepicker.Model
	spinner   spinner.Model
	confirmID string

	styles Styles
	width  int
	height int
}

// New builds the interface. ctx bounds every remote call and intake job.
func New(ctx context.Context, opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	intake := opts.Processor
	if intake == nil {
		intake = imageintake.New(imageintake.WithLogger(log))
	}
	exportPath := opts.ExportPath
	if exportPath == "" {
		exportPath = directory.CSVFileName
	}
	styles := DefaultStyles()

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 22},
			{Title: "Age", Width: 4},
			{Title: "Group", Width: 8},
			{Title: "Email", Width: 28},
			{Title: "Avatar", Width: 18},
		}),
		table.WithFocused(true),
		table.WithHeight(listview.DefaultPageSize),
	)

	si := textinput.New()
	si.Placeholder = "Search by name..."
	si.Prompt = "/ "
	si.CharLimit = 100
	si.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return Model{
		ctx:        ctx,
		svc:        opts.Service,
		intake:     intake,
		log:        log,
		state:      directory.NewState(opts.PageSize, log),
		exportPath: exportPath,
		table:      t,
		search:     si,
		picker:     newPicker(),
		spinner:    sp,
		styles:     styles,
	}
}

func newPicker() filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}
	fp.Height = 15
	return fp
}

// Init starts the initial load.
func (m Model) Init() tea.Cmd {
	m.state.FetchStarted()
	return tea.Batch(fetchCmd(m.ctx, m.svc), m.spinner.Tick)
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetHeight(max(5, min(listview.DefaultPageSize, msg.Height-8)))
		m.picker.Height = max(5, msg.Height-10)
		return m, nil

	case fetchedMsg:
		if msg.err != nil {
			m.state.FetchFailed(msg.err)
		} else {
			m.state.FetchSucceeded(msg.records)
		}
		m.refreshTable()
		return m, nil

	case savedMsg:
		return m.handleSaved(msg)

	case deletedMsg:
		if msg.err != nil {
			m.state.DeleteFailed(msg.id, msg.err)
		} else {
			m.state.DeleteSucceeded(msg.id)
			m.refreshTable()
		}
		return m, expireCmd(m.state.Notice.Seq)

	case intakePhaseMsg:
		if f := m.formFor(msg.formID); f != nil {
			f.form.IntakeProgress(msg.phase)
		}
		return m, waitIntake(msg.ch)

	case intakeDoneMsg:
		if f := m.formFor(msg.formID); f != nil {
			if msg.err != nil {
				m.log.Warn("image rejected", slog.String("error", msg.err.Error()))
				f.form.IntakeFailed(msg.err)
			} else {
				f.form.IntakeSucceeded(msg.res)
				f.showUpload()
			}
		}
		return m, nil

	case noticeExpiredMsg:
		m.state.NoticeExpired(msg.seq)
		return m, nil

	case exportedMsg:
		var seq uint64
		if msg.err != nil {
			m.log.Error("export failed", slog.String("error", msg.err.Error()))
			seq = m.state.Notify(directory.NoticeError, "Export failed: "+msg.err.Error())
		} else {
			m.log.Info("students exported", slog.String("path", msg.path), slog.Int("count", msg.count))
			seq = m.state.Notify(directory.NoticeSuccess, fmt.Sprintf("Exported %d students to %s", msg.count, msg.path))
		}
		return m, expireCmd(seq)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenForm:
			return m.updateForm(msg)
		case screenPicker:
			return m.updatePicker(msg)
		case screenConfirmDelete:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}

	if m.screen == screenPicker {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter":
			m.searching = false
			m.search.Blur()
			return m, nil
		case "esc":
			m.searching = false
			m.search.Blur()
			m.search.SetValue("")
			m.state.SearchChanged("")
			m.refreshTable()
			return m, nil
		}
		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != before {
			m.state.SearchChanged(m.search.Value())
			m.refreshTable()
		}
		return m, cmd
	}

	if m.state.Status == directory.StatusLoading {
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r":
		if m.state.Status == directory.StatusLoadFailed {
			m.state.FetchStarted()
			return m, fetchCmd(m.ctx, m.svc)
		}
		return m, nil
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "g":
		m.state.GroupChanged(nextGroup(m.state.Groups(), m.state.Query.Group))
		m.refreshTable()
		return m, nil
	case "s":
		m.state.SortRequested(nextSortField(m.state.Query.SortBy))
		m.refreshTable()
		return m, nil
	case "o":
		m.state.SortRequested(m.state.Query.SortBy)
		m.refreshTable()
		return m, nil
	case "left", "h", "pgup":
		m.state.PageChanged(m.state.Query.Page - 1)
		m.refreshTable()
		return m, nil
	case "right", "l", "pgdown":
		m.state.PageChanged(m.state.Query.Page + 1)
		m.refreshTable()
		return m, nil
	case "a":
		return m.openForm(directory.NewForm())
	case "e", "enter":
		if rec, ok := m.selected(); ok {
			return m.openForm(directory.EditForm(rec))
		}
		return m, nil
	case "d":
		if rec, ok := m.selected(); ok {
			m.confirmID = rec.ID
			m.screen = screenConfirmDelete
		}
		return m, nil
	case "x":
		return m, exportCmd(m.exportPath, m.state.View().Filtered)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch msg.String() {
	case "esc":
		// An in-flight submission is not cancelled; its result is
		// still merged when it arrives.
		m.form = nil
		m.screen = screenList
		return m, nil
	case "tab", "down":
		return m, f.setFocus(f.focus + 1)
	case "shift+tab", "up":
		return m, f.setFocus(f.focus - 1)
	case "ctrl+o":
		if f.form.CanSubmit() {
			m.picker = newPicker()
			m.screen = screenPicker
			return m, m.picker.Init()
		}
		return m, nil
	case "enter":
		sub, err := f.form.BeginSubmit()
		if err != nil {
			return m, nil
		}
		return m, submitCmd(m.ctx, m.svc, f.id, sub)
	}
	return m, f.updateInput(msg)
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.screen = screenForm
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.screen = screenForm
		m.form.form.BeginIntake()
		m.log.Info("processing image", slog.String("path", path))
		return m, intakeCmd(m.ctx, m.intake, m.form.id, path)
	}
	if ok, _ := m.picker.DidSelectDisabledFile(msg); ok {
		m.screen = screenForm
		m.form.form.IntakeFailed(&imageintake.Error{Reason: imageintake.ReasonMediaType})
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := m.confirmID
		m.confirmID = ""
		m.screen = screenList
		return m, deleteCmd(m.ctx, m.svc, id)
	case "n", "N", "esc", "q":
		m.confirmID = ""
		m.screen = screenList
	}
	return m, nil
}

func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if f := m.formFor(msg.formID); f != nil {
		f.form.FinishSubmit(msg.err)
		if msg.err != nil {
			m.log.Error("error saving student", slog.String("error", msg.err.Error()))
			return m, nil
		}
		m.form = nil
		m.screen = screenList
	} else if msg.err != nil {
		m.log.Warn("discarded failed save from a closed form", slog.String("error", msg.err.Error()))
		return m, nil
	}

	m.state.Saved(msg.mode, msg.rec)
	m.refreshTable()
	return m, expireCmd(m.state.Notice.Seq)
}

func (m Model) openForm(f *directory.Form) (tea.Model, tea.Cmd) {
	m.formSeq++
	m.form = newFormModel(m.formSeq, f)
	m.screen = screenForm
	return m, textinput.Blink
}

// formFor returns the open form if it is the one numbered id.
func (m Model) formFor(id int) *formModel {
	if m.form != nil && m.form.id == id {
		return m.form
	}
	return nil
}

func (m Model) selected() (types.Student, bool) {
	items := m.state.View().Items
	i := m.table.Cursor()
	if i < 0 || i >= len(items) {
		return types.Student{}, false
	}
	return items[i], true
}

// refreshTable re-derives the view and loads the current page into the
// table.
func (m *Model) refreshTable() {
	items := m.state.View().Items
	rows := make([]table.Row, len(items))
	for i, r := range items {
		rows[i] = table.Row{r.Name, r.Age.String(), r.Group, r.Email, avatarCell(r.Avatar)}
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) || c < 0 {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func avatarCell(avatar string) string {
	switch kind := types.KindOf(avatar); kind {
	case types.AvatarNone:
		return "(placeholder)"
	case types.AvatarEmbedded:
		return kind.Label()
	default:
		return avatar
	}
}

func nextGroup(groups []string, current string) string {
	options := append([]string{""}, groups...)
	i := slices.Index(options, current)
	return options[(i+1)%len(options)]
}

func nextSortField(current listview.SortField) listview.SortField {
	i := slices.Index(listview.SortFields, current)
	return listview.SortFields[(i+1)%len(listview.SortFields)]
}
