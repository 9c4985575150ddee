package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/aanand-mishra/student-directory/internal/imageintake"
	"github.com/aanand-mishra/student-directory/internal/types"
	"github.com/aanand-mishra/student-directory/internal/validation"
)

// FieldForm keys the form-level message in Form.Errors.
const FieldForm = "form"

// ErrBusy is returned when a submission is attempted while the form is
// already submitting or an image is still being processed.
var ErrBusy = errors.New("form is busy")

// Mode says whether a form creates or edits a record.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Form is one add or edit form. Like State, it is mutated from a single
// goroutine; remote calls run on a Submission copy.
type Form struct {
	Mode  Mode
	ID    string
	Draft types.Draft
	// AvatarKind labels the avatar preview.
	AvatarKind types.AvatarKind
	// Image describes the last processed upload, for the preview caption.
	Image *imageintake.Result
	// Errors holds per-field messages plus FieldForm for the whole form.
	Errors validation.Errors
	// Phase is the image intake step in progress, if Processing.
	Phase      imageintake.Phase
	Processing bool
	Submitting bool
}

// NewForm returns an empty create form.
func NewForm() *Form {
	return &Form{Mode: ModeCreate, Errors: validation.Errors{}}
}

// EditForm returns a form pre-filled from rec.
func EditForm(rec types.Student) *Form {
	return &Form{
		Mode:       ModeEdit,
		ID:         rec.ID,
		Draft:      types.DraftFrom(rec),
		AvatarKind: types.KindOf(rec.Avatar),
		Errors:     validation.Errors{},
	}
}

// Set stores value in field and clears that field's error. Unknown fields
// are ignored.
func (f *Form) Set(field, value string) {
	switch field {
	case validation.FieldName:
		f.Draft.Name = value
	case validation.FieldAge:
		f.Draft.Age = value
	case validation.FieldGroup:
		f.Draft.Group = value
	case validation.FieldEmail:
		f.Draft.Email = value
	case validation.FieldAvatar:
		f.Draft.Avatar = value
		f.AvatarKind = types.KindOf(strings.TrimSpace(value))
		f.Image = nil
	default:
		return
	}
	delete(f.Errors, field)
}

// BeginIntake marks an image as being processed.
func (f *Form) BeginIntake() {
	f.Processing = true
	f.Phase = imageintake.PhaseProcessing
	delete(f.Errors, validation.FieldAvatar)
}

func (f *Form) IntakeProgress(p imageintake.Phase) {
	if f.Processing {
		f.Phase = p
	}
}

// IntakeSucceeded makes the processed image the avatar.
func (f *Form) IntakeSucceeded(res imageintake.Result) {
	f.Processing = false
	f.Phase = ""
	f.Draft.Avatar = res.DataURI
	f.AvatarKind = res.Kind
	f.Image = &res
	delete(f.Errors, validation.FieldAvatar)
}

// IntakeFailed shows the rejection under the avatar field. The previous
// avatar is kept.
func (f *Form) IntakeFailed(err error) {
	f.Processing = false
	f.Phase = ""
	var ie *imageintake.Error
	if !errors.As(err, &ie) {
		ie = &imageintake.Error{Reason: imageintake.ReasonFailed, Cause: err}
	}
	f.Errors[validation.FieldAvatar] = ie.Error()
}

// CanSubmit is false while a submission or an image is in flight.
func (f *Form) CanSubmit() bool {
	return !f.Submitting && !f.Processing
}

// Submission is a validated draft on its way to the store.
type Submission struct {
	Mode  Mode
	ID    string
	Draft types.Draft
}

// Run sends the submission through svc.
func (s Submission) Run(ctx context.Context, svc RecordService) (types.Student, error) {
	if s.Mode == ModeEdit {
		return svc.Update(ctx, s.ID, s.Draft)
	}
	return svc.Create(ctx, s.Draft)
}

// BeginSubmit validates the draft. On success the form is marked as
// submitting and the returned Submission is ready to Run; on failure the
// field errors are in f.Errors and nothing should be sent.
func (f *Form) BeginSubmit() (Submission, error) {
	if !f.CanSubmit() {
		return Submission{}, ErrBusy
	}
	delete(f.Errors, FieldForm)

	if errs := validation.Validate(f.Draft); len(errs) > 0 {
		f.Errors = errs
		return Submission{}, errs
	}

	f.Submitting = true
	return Submission{Mode: f.Mode, ID: f.ID, Draft: f.Draft}, nil
}

// FinishSubmit records the outcome of Run. A failure becomes the
// form-level message and the form stays open for another try.
func (f *Form) FinishSubmit(err error) {
	f.Submitting = false
	if err != nil {
		f.Errors[FieldForm] = UserMessage(err)
	}
}

// Submit validates and sends the form in one blocking call.
func (f *Form) Submit(ctx context.Context, svc RecordService) (types.Student, error) {
	sub, err := f.BeginSubmit()
	if err != nil {
		return types.Student{}, err
	}
	rec, err := sub.Run(ctx, svc)
	f.FinishSubmit(err)
	if err != nil {
		return types.Student{}, err
	}
	return rec, nil
}
