package tui

import (
	"fmt"
	"strings"

	"github.com/aanand-mishra/student-directory/internal/directory"
	"github.com/aanand-mishra/student-directory/internal/listview"
	"github.com/aanand-mishra/student-directory/internal/types"
)

// View renders the current screen.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Student Directory"))
	b.WriteString("\n\n")

	switch m.screen {
	case screenForm:
		b.WriteString(m.formView())
	case screenPicker:
		b.WriteString("Pick an image (JPG, PNG, GIF or WebP)\n\n")
		b.WriteString(m.picker.View())
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render("enter select • esc back"))
	case screenConfirmDelete:
		b.WriteString(m.confirmView())
	default:
		b.WriteString(m.listView())
	}

	if n := m.state.Notice; n != nil {
		b.WriteString("\n\n")
		if n.Kind == directory.NoticeError {
			b.WriteString(m.styles.Error.Render(n.Text))
		} else {
			b.WriteString(m.styles.Success.Render(n.Text))
		}
	}
	return b.String()
}

func (m Model) listView() string {
	switch m.state.Status {
	case directory.StatusIdle, directory.StatusLoading:
		return m.spinner.View() + " Loading students..."
	case directory.StatusLoadFailed:
		return m.styles.Error.Render(m.state.LoadError) + "\n\n" +
			m.styles.Help.Render("r retry • q quit")
	}

	var b strings.Builder
	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	v := m.state.View()
	q := m.state.Query
	group := q.Group
	if group == "" {
		group = "All"
	}
	b.WriteString(m.styles.Status.Render(fmt.Sprintf(
		"Group: %s  Sort: %s %s  Page %d/%d  (%d students)",
		group, q.SortBy, arrow(q.Order), v.Page, v.TotalPages, v.Total)))
	b.WriteString("\n")

	if v.Total == 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("No students found."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render(
		"/ search • g group • s sort • o order • ←/→ page • a add • e edit • d delete • x export • q quit"))
	return b.String()
}

func (m Model) formView() string {
	f := m.form
	var b strings.Builder

	title := "Add Student"
	if f.form.Mode == directory.ModeEdit {
		title = "Edit Student"
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	for i, field := range formFields {
		b.WriteString(m.styles.Label.Render(field.label))
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
		if msg, ok := f.form.Errors[field.key]; ok {
			b.WriteString(m.styles.Error.Render("        " + msg))
			b.WriteString("\n")
		}
	}

	if kind := f.form.AvatarKind; kind != types.AvatarNone {
		b.WriteString(m.styles.Muted.Render("        Preview: " + kind.Label()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case f.form.Processing:
		b.WriteString(m.spinner.View() + " " + f.form.Phase.String())
		b.WriteString("\n")
	case f.form.Submitting:
		b.WriteString(m.spinner.View() + " Saving...")
		b.WriteString("\n")
	}
	if msg, ok := f.form.Errors[directory.FieldForm]; ok {
		b.WriteString(m.styles.Error.Render(msg))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render("tab next • ctrl+o upload image • enter save • esc cancel"))
	return m.styles.Panel.Render(b.String())
}

func (m Model) confirmView() string {
	name := m.confirmID
	if rec, ok := m.state.Find(m.confirmID); ok {
		name = rec.Name
	}
	return fmt.Sprintf("Delete %s? This cannot be undone.\n\n", name) +
		m.styles.Help.Render("y delete • n cancel")
}

func arrow(o listview.Order) string {
	if o == listview.Desc {
		return "↓"
	}
	return "↑"
}
