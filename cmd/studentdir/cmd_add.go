package main

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-directory/internal/directory"
	"github.com/aanand-mishra/student-directory/internal/imageintake"
	"github.com/aanand-mishra/student-directory/internal/validation"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		draft struct{ name, age, group, email, avatar string }
		image string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student",
		Example: `  studentdir add --name "Jane Doe" --age 22 --group B2 --email jane@example.com
  studentdir add --name "Jane Doe" --age 22 --group B2 --email jane@example.com --image jane.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := directory.NewForm()
			form.Set(validation.FieldName, draft.name)
			form.Set(validation.FieldAge, draft.age)
			form.Set(validation.FieldGroup, draft.group)
			form.Set(validation.FieldEmail, draft.email)
			form.Set(validation.FieldAvatar, draft.avatar)

			if image != "" {
				if err := intake(cmd, a, form, image); err != nil {
					return err
				}
			}

			rec, err := form.Submit(cmd.Context(), a.client)
			if err != nil {
				printFormErrors(cmd, form)
				return errors.New("student not added")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", directory.MsgCreated, rec.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&draft.name, "name", "", "full name")
	cmd.Flags().StringVar(&draft.age, "age", "", "age, 16 to 100")
	cmd.Flags().StringVar(&draft.group, "group", "", "group")
	cmd.Flags().StringVar(&draft.email, "email", "", "email address")
	cmd.Flags().StringVar(&draft.avatar, "avatar", "", "avatar image URL")
	cmd.Flags().StringVar(&image, "image", "", "avatar image file to upload instead of a URL")
	cmd.MarkFlagsMutuallyExclusive("avatar", "image")
	return cmd
}

// intake runs the image at path through the form's upload workflow,
// reporting each phase on stderr.
func intake(cmd *cobra.Command, a *app, form *directory.Form, path string) error {
	form.BeginIntake()

	f, err := imageintake.FromPath(path)
	if err != nil {
		form.IntakeFailed(err)
		a.log.Error("cannot read image", slog.String("path", path), slog.String("error", err.Error()))
	} else {
		p := imageintake.New(imageintake.WithLogger(a.log))
		res, err := p.Process(cmd.Context(), f, func(ph imageintake.Phase) {
			form.IntakeProgress(ph)
			fmt.Fprintln(cmd.ErrOrStderr(), ph)
		})
		if err != nil {
			form.IntakeFailed(err)
		} else {
			form.IntakeSucceeded(res)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s ~%d KB\n", res.Kind.Label(), res.ApproxKB())
		}
	}

	if msg, ok := form.Errors[validation.FieldAvatar]; ok {
		return errors.New(msg)
	}
	return nil
}

func printFormErrors(cmd *cobra.Command, form *directory.Form) {
	fields := make([]string, 0, len(form.Errors))
	for f := range form.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", f, form.Errors[f])
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s: %w", directory.MsgDeleteFailed, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), directory.MsgDeleted)
			return nil
		},
	}
}
