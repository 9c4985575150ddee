package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aanand-mishra/student-directory/internal/directory"
	"github.com/aanand-mishra/student-directory/internal/imageintake"
	"github.com/aanand-mishra/student-directory/internal/types"
)

// Messages delivered to Update by the commands below.
type (
	fetchedMsg struct {
		records []types.Student
		err     error
	}

	savedMsg struct {
		formID int
		mode   directory.Mode
		rec    types.Student
		err    error
	}

	deletedMsg struct {
		id  string
		err error
	}

	// intakePhaseMsg carries the channel the rest of the intake arrives
	// on, so Update can keep listening.
	intakePhaseMsg struct {
		formID int
		phase  imageintake.Phase
		ch     <-chan tea.Msg
	}

	intakeDoneMsg struct {
		formID int
		res    imageintake.Result
		err    error
	}

	noticeExpiredMsg struct{ seq uint64 }

	exportedMsg struct {
		path  string
		count int
		err   error
	}
)

func fetchCmd(ctx context.Context, svc directory.RecordService) tea.Cmd {
	return func() tea.Msg {
		records, err := svc.ListAll(ctx)
		return fetchedMsg{records: records, err: err}
	}
}

func submitCmd(ctx context.Context, svc directory.RecordService, formID int, sub directory.Submission) tea.Cmd {
	return func() tea.Msg {
		rec, err := sub.Run(ctx, svc)
		return savedMsg{formID: formID, mode: sub.Mode, rec: rec, err: err}
	}
}

func deleteCmd(ctx context.Context, svc directory.RecordService, id string) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{id: id, err: svc.Delete(ctx, id)}
	}
}

// intakeCmd processes the image at path on its own goroutine. Progress
// and the result arrive as messages; the buffer holds all of them, so the
// goroutine finishes even if nobody is listening any more.
func intakeCmd(ctx context.Context, p *imageintake.Processor, formID int, path string) tea.Cmd {
	return func() tea.Msg {
		ch := make(chan tea.Msg, 4)
		go func() {
			defer close(ch)
			f, err := imageintake.FromPath(path)
			if err != nil {
				ch <- intakeDoneMsg{formID: formID, err: err}
				return
			}
			res, err := p.Process(ctx, f, func(ph imageintake.Phase) {
				ch <- intakePhaseMsg{formID: formID, phase: ph, ch: ch}
			})
			ch <- intakeDoneMsg{formID: formID, res: res, err: err}
		}()
		return <-ch
	}
}

func waitIntake(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func exportCmd(path string, records []types.Student) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return exportedMsg{path: path, err: err}
		}
		if err := directory.WriteCSV(f, records); err != nil {
			f.Close()
			return exportedMsg{path: path, err: fmt.Errorf("write csv: %w", err)}
		}
		if err := f.Close(); err != nil {
			return exportedMsg{path: path, err: err}
		}
		return exportedMsg{path: path, count: len(records)}
	}
}

func expireCmd(seq uint64) tea.Cmd {
	return tea.Tick(directory.NoticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}
