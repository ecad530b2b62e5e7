package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load FILE...",
	Short: "Replay one or more registry files",
	Long: `Replay registry files into a fresh in-memory registry and print the result.

Files ending in .yaml or .yml are read as YAML documents; everything else is
read as tagged lines (STUDENT, COURSE, ENROLL). Files are applied in order,
so later files may enroll students defined by earlier ones.

Examples:
  registrar load students.txt courses.txt enrollments.txt
  registrar load seed.yaml --recent 5
  registrar load seed.txt -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := newRegistry()
		importer := newImporter(reg)
		out := cmd.OutOrStdout()

		var failed []error
		for _, path := range args {
			summary, err := importer.LoadFile(cmd.Context(), path)
			if err != nil {
				failed = append(failed, err)
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
				continue
			}
			fmt.Fprintf(out, "Loaded %d students, %d courses, %d enrollments from %s\n",
				summary.StudentsLoaded, summary.CoursesLoaded, summary.EnrollmentsLoaded, path)
			for _, warning := range summary.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "  warning: %s\n", warning)
			}
		}

		if err := printStatistics(out, reg.Statistics()); err != nil {
			return err
		}
		if err := printRecent(out, reg); err != nil {
			return err
		}
		return errors.Join(failed...)
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
