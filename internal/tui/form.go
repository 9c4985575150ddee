package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aanand-mishra/student-directory/internal/directory"
	"github.com/aanand-mishra/student-directory/internal/types"
	"github.com/aanand-mishra/student-directory/internal/validation"
)

type formField struct {
	key         string
	label       string
	placeholder string
	limit       int
}

var formFields = []formField{
	{validation.FieldName, "Name", "Jane Doe", 100},
	{validation.FieldAge, "Age", "16-100", 3},
	{validation.FieldGroup, "Group", "A1", 20},
	{validation.FieldEmail, "Email", "jane@example.com", 100},
	{validation.FieldAvatar, "Avatar", "https://... (ctrl+o to upload a file)", 2048},
}

const avatarInput = 4

// formModel is the on-screen add/edit form. The directory.Form it wraps
// holds the real draft; the inputs only mirror what the user typed.
type formModel struct {
	id     int
	form   *directory.Form
	inputs []textinput.Model
	focus  int
}

func newFormModel(id int, f *directory.Form) *formModel {
	fm := &formModel{id: id, form: f, inputs: make([]textinput.Model, len(formFields))}
	values := []string{f.Draft.Name, f.Draft.Age, f.Draft.Group, f.Draft.Email, f.Draft.Avatar}

	for i, field := range formFields {
		ti := textinput.New()
		ti.Placeholder = field.placeholder
		ti.CharLimit = field.limit
		ti.Width = 48
		ti.Prompt = ""
		ti.SetValue(values[i])
		fm.inputs[i] = ti
	}
	if types.IsEmbedded(f.Draft.Avatar) {
		fm.showUpload()
	}
	fm.inputs[0].Focus()
	return fm
}

// showUpload empties the avatar input so an embedded image is never
// rendered as text; the draft keeps the image.
func (fm *formModel) showUpload() {
	ti := &fm.inputs[avatarInput]
	ti.SetValue("")
	ti.Placeholder = fm.form.AvatarKind.Label()
	if fm.form.Image != nil {
		ti.Placeholder = fmt.Sprintf("%s ~%d KB", ti.Placeholder, fm.form.Image.ApproxKB())
	}
}

func (fm *formModel) setFocus(i int) tea.Cmd {
	n := len(fm.inputs)
	i = (i%n + n) % n
	fm.inputs[fm.focus].Blur()
	fm.focus = i
	return fm.inputs[i].Focus()
}

// updateInput feeds msg to the focused input and copies a changed value
// into the draft.
func (fm *formModel) updateInput(msg tea.Msg) tea.Cmd {
	ti := &fm.inputs[fm.focus]
	before := ti.Value()
	var cmd tea.Cmd
	*ti, cmd = ti.Update(msg)
	if after := ti.Value(); after != before {
		fm.form.Set(formFields[fm.focus].key, after)
		if fm.focus == avatarInput {
			ti.Placeholder = formFields[avatarInput].placeholder
		}
	}
	return cmd
}
