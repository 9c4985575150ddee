package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-directory/internal/directory"
	"github.com/aanand-mishra/student-directory/internal/listview"
	"github.com/aanand-mishra/student-directory/internal/types"
)

// viewFlags are the list selections shared by list and export.
type viewFlags struct {
	search string
	group  string
	sortBy string
	desc   bool
	page   int
}

func (f *viewFlags) register(cmd *cobra.Command, withPage bool) {
	cmd.Flags().StringVar(&f.search, "search", "", "only names containing this text")
	cmd.Flags().StringVar(&f.group, "group", "", "only this group")
	cmd.Flags().StringVar(&f.sortBy, "sort", string(listview.SortByName), "sort by name, age, group or email")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
	if withPage {
		cmd.Flags().IntVar(&f.page, "page", 1, "page to show")
	}
}

// load fetches the records and applies the selections the same way the
// interactive directory would.
func (f *viewFlags) load(cmd *cobra.Command, a *app) (*directory.State, error) {
	field := listview.SortField(f.sortBy)
	if field != listview.SortByEmail && !slices.Contains(listview.SortFields, field) {
		return nil, fmt.Errorf("unknown sort field %q", f.sortBy)
	}

	st := directory.NewState(a.cfg.Client.PageSize, a.log)
	if err := st.Load(cmd.Context(), a.client); err != nil {
		return nil, fmt.Errorf("%s: %w", directory.MsgLoadFailed, err)
	}

	st.SearchChanged(f.search)
	st.GroupChanged(f.group)
	if st.Query.SortBy != field {
		st.SortRequested(field)
	}
	if f.desc {
		st.SortRequested(field)
	}
	if f.page > 1 {
		st.PageChanged(f.page)
	}
	return st, nil
}

func newListCmd(a *app) *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := flags.load(cmd, a)
			if err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), st.View())
			return nil
		},
	}
	flags.register(cmd, true)
	return cmd
}

func printView(w io.Writer, v listview.View) {
	if v.Total == 0 {
		fmt.Fprintln(w, "No students found.")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Name", "Age", "Group", "Email", "Avatar")
	for _, r := range v.Items {
		t.Row(r.ID, r.Name, r.Age.String(), r.Group, r.Email, avatarText(r.Avatar))
	}
	fmt.Fprintln(w, t.String())
	fmt.Fprintf(w, "Page %d/%d (%d students)\n", v.Page, v.TotalPages, v.Total)
}

func avatarText(avatar string) string {
	switch kind := types.KindOf(avatar); kind {
	case types.AvatarNone:
		return "(placeholder)"
	case types.AvatarEmbedded:
		return kind.Label()
	}
	if r := []rune(avatar); len(r) > 40 {
		return string(r[:37]) + "..."
	}
	return avatar
}

func newExportCmd(a *app) *cobra.Command {
	var (
		flags viewFlags
		out   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered directory as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := flags.load(cmd, a)
			if err != nil {
				return err
			}
			records := st.View().Filtered

			if out == "-" {
				return directory.WriteCSV(cmd.OutOrStdout(), records)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := directory.WriteCSV(f, records); err != nil {
				f.Close()
				return fmt.Errorf("write %s: %w", out, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d students to %s\n", len(records), out)
			return nil
		},
	}
	flags.register(cmd, false)
	cmd.Flags().StringVarP(&out, "out", "o", directory.CSVFileName, `output file, or "-" for stdout`)
	return cmd
}
